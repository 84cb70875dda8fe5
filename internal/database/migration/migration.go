package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            TEXT        PRIMARY KEY,
  name          TEXT        NOT NULL,
  role          TEXT        NOT NULL,
  department_id TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_blob_manifests",
		SQL: `CREATE TABLE IF NOT EXISTS blob_manifests (
  id            TEXT        PRIMARY KEY,
  length        BIGINT      NOT NULL CHECK (length >= 0),
  chunk_size    INTEGER     NOT NULL CHECK (chunk_size > 0),
  content_type  TEXT        NOT NULL,
  original_name TEXT        NOT NULL,
  metadata      JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_blob_chunks",
		SQL: `CREATE TABLE IF NOT EXISTS blob_chunks (
  blob_id TEXT   NOT NULL,
  n       BIGINT NOT NULL CHECK (n >= 0),
  data    BYTEA  NOT NULL,
  PRIMARY KEY (blob_id, n)
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  owner_id      TEXT        NOT NULL,
  title         TEXT        NOT NULL,
  blob_id       TEXT        NOT NULL,
  original_name TEXT        NOT NULL,
  visibility    TEXT        NOT NULL DEFAULT 'private' CHECK (visibility IN ('private', 'shared', 'public')),
  content_type  TEXT        NOT NULL,
  size          BIGINT      NOT NULL CHECK (size >= 0),
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_owner_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner_id ON documents (owner_id);`,
	},
	{
		Name: "create_index_documents_visibility",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_visibility ON documents (visibility);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
	{
		Name: "create_table_folders",
		SQL: `CREATE TABLE IF NOT EXISTS folders (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  owner_id   TEXT        NOT NULL,
  name       TEXT        NOT NULL,
  status     TEXT        NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Completed')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_folders_owner_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_folders_owner_id ON folders (owner_id);`,
	},
	{
		Name: "create_table_folder_documents",
		SQL: `CREATE TABLE IF NOT EXISTS folder_documents (
  folder_id   UUID        NOT NULL,
  document_id UUID        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (folder_id, document_id)
);`,
	},
	{
		Name: "create_index_folder_documents_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_folder_documents_document_id ON folder_documents (document_id);`,
	},
	{
		Name: "create_table_share_grants",
		SQL: `CREATE TABLE IF NOT EXISTS share_grants (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id UUID        NOT NULL,
  grantor_id  TEXT        NOT NULL,
  grantee_id  TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT share_grants_not_self CHECK (grantor_id <> grantee_id),
  CONSTRAINT share_grants_unique UNIQUE (document_id, grantor_id, grantee_id)
);`,
	},
	{
		Name: "create_index_share_grants_grantee_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_share_grants_grantee_id ON share_grants (grantee_id);`,
	},
	{
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  receiver_id TEXT        NOT NULL,
  sender_id   TEXT        NOT NULL,
  title       TEXT        NOT NULL,
  message     TEXT        NOT NULL,
  type        TEXT        NOT NULL,
  priority    TEXT        NOT NULL,
  is_read     BOOLEAN     NOT NULL DEFAULT false,
  sent_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_notifications_receiver_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_notifications_receiver_id ON notifications (receiver_id);`,
	},
}

// EnsureMigrated checks whether the sentinel table exists and runs all steps if it doesn't.
// Every step is idempotent, so a partially applied schema is completed on the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.share_grants') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return nil
}
