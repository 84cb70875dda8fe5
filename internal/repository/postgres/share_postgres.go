package postgres

import (
	"context"
	"database/sql"
	"errors"

	"docvault/internal/model"
	"docvault/internal/repository"
)

const grantColumns = `g.id, g.document_id, g.grantor_id, g.grantee_id, g.created_at`

type SharePostgres struct {
	db *sql.DB
}

func NewSharePostgres(db *sql.DB) *SharePostgres {
	return &SharePostgres{db: db}
}

var _ repository.ShareRepository = (*SharePostgres)(nil)

func scanGrant(row rowScanner) (model.ShareGrant, error) {
	var g model.ShareGrant
	err := row.Scan(&g.ID, &g.DocumentID, &g.GrantorID, &g.GranteeID, &g.CreatedAt)
	return g, err
}

// Create relies on the unique constraint, so concurrent duplicates resolve to created=false.
func (r *SharePostgres) Create(ctx context.Context, g *model.ShareGrant) (*model.ShareGrant, bool, error) {
	const q = `
		INSERT INTO share_grants AS g (id, document_id, grantor_id, grantee_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id, grantor_id, grantee_id) DO NOTHING
		RETURNING ` + grantColumns
	out, err := scanGrant(r.db.QueryRowContext(ctx, q, g.ID, g.DocumentID, g.GrantorID, g.GranteeID, g.CreatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

func (r *SharePostgres) FindByID(ctx context.Context, id string) (*model.ShareGrant, error) {
	g, err := scanGrant(r.db.QueryRowContext(ctx, `SELECT `+grantColumns+` FROM share_grants g WHERE g.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (r *SharePostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM share_grants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SharePostgres) ListByDocument(ctx context.Context, documentID, grantorID string) ([]model.ShareGrant, error) {
	var b clauseBuilder
	b.add("g.document_id = " + b.arg(documentID))
	if grantorID != "" {
		b.add("g.grantor_id = " + b.arg(grantorID))
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+grantColumns+` FROM share_grants g `+b.where()+` ORDER BY g.created_at DESC, g.id DESC`,
		b.args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ShareGrant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

func (r *SharePostgres) ListByGrantee(ctx context.Context, granteeID string, pq repository.PageQuery) (*repository.PageResult[model.SharedDocument], error) {
	return r.listShared(ctx, "g.grantee_id", granteeID, pq)
}

func (r *SharePostgres) ListByGrantor(ctx context.Context, grantorID string, pq repository.PageQuery) (*repository.PageResult[model.SharedDocument], error) {
	return r.listShared(ctx, "g.grantor_id", grantorID, pq)
}

// listShared joins grants with their documents; column is a trusted constant.
func (r *SharePostgres) listShared(ctx context.Context, column, userID string, pq repository.PageQuery) (*repository.PageResult[model.SharedDocument], error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM share_grants g JOIN documents d ON d.id = g.document_id WHERE `+column+` = $1`,
		userID,
	).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + grantColumns + `, ` + documentColumns + `
		FROM share_grants g
		JOIN documents d ON d.id = g.document_id
		WHERE ` + column + ` = $1
		ORDER BY g.created_at DESC, g.id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SharedDocument, 0)
	for rows.Next() {
		var s model.SharedDocument
		if err := rows.Scan(
			&s.Grant.ID, &s.Grant.DocumentID, &s.Grant.GrantorID, &s.Grant.GranteeID, &s.Grant.CreatedAt,
			&s.Document.ID, &s.Document.OwnerID, &s.Document.Title, &s.Document.BlobID, &s.Document.OriginalName,
			&s.Document.Visibility, &s.Document.ContentType, &s.Document.Size, &s.Document.CreatedAt, &s.Document.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.SharedDocument]{Items: items, Total: total}, nil
}

func (r *SharePostgres) GranteeIDs(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT grantee_id FROM share_grants WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SharePostgres) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM share_grants WHERE document_id = $1`, documentID).Scan(&n)
	return n, err
}

func (r *SharePostgres) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM share_grants WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
