package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"docvault/internal/database"
)

// PostgresChunks keeps manifests in blob_manifests and chunk bytes in blob_chunks.
type PostgresChunks struct {
	db *sql.DB
}

func NewPostgresChunks(db *sql.DB) *PostgresChunks {
	return &PostgresChunks{db: db}
}

var _ ChunkBackend = (*PostgresChunks)(nil)

func (p *PostgresChunks) PutChunk(ctx context.Context, blobID string, n int64, data []byte) error {
	const q = `INSERT INTO blob_chunks (blob_id, n, data) VALUES ($1, $2, $3)`
	_, err := p.db.ExecContext(ctx, q, blobID, n, data)
	return err
}

func (p *PostgresChunks) GetChunk(ctx context.Context, blobID string, n int64) ([]byte, error) {
	const q = `SELECT data FROM blob_chunks WHERE blob_id = $1 AND n = $2`
	var data []byte
	if err := p.db.QueryRowContext(ctx, q, blobID, n).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return data, nil
}

func (p *PostgresChunks) PutManifest(ctx context.Context, info BlobInfo) error {
	meta, err := json.Marshal(metadataOrEmpty(info.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	const q = `
		INSERT INTO blob_manifests (id, length, chunk_size, content_type, original_name, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = p.db.ExecContext(ctx, q,
		info.ID,
		info.Length,
		info.ChunkSize,
		info.ContentType,
		info.OriginalName,
		meta,
		info.CreatedAt,
	)
	return err
}

func (p *PostgresChunks) GetManifest(ctx context.Context, blobID string) (BlobInfo, error) {
	const q = `
		SELECT id, length, chunk_size, content_type, original_name, metadata, created_at
		FROM blob_manifests
		WHERE id = $1
	`
	var (
		info BlobInfo
		meta []byte
	)
	err := p.db.QueryRowContext(ctx, q, blobID).Scan(
		&info.ID,
		&info.Length,
		&info.ChunkSize,
		&info.ContentType,
		&info.OriginalName,
		&meta,
		&info.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BlobInfo{}, ErrBlobNotFound
		}
		return BlobInfo{}, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &info.Metadata); err != nil {
			return BlobInfo{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return info, nil
}

// DeleteBlob removes chunks and manifest in one transaction. Chunks are removed even when the
// manifest is missing, which is how a failed Store is cleaned up.
func (p *PostgresChunks) DeleteBlob(ctx context.Context, blobID string) error {
	var removed int64
	err := database.InTx(ctx, p.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM blob_chunks WHERE blob_id = $1`, blobID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM blob_manifests WHERE id = $1`, blobID)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrBlobNotFound
	}
	return nil
}

func metadataOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
