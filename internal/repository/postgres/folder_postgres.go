package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/database"
	"docvault/internal/model"
	"docvault/internal/repository"
)

const folderSelect = `
	SELECT f.id, f.owner_id, f.name, f.status, f.created_at, f.updated_at,
	       (SELECT COUNT(*) FROM folder_documents fd WHERE fd.folder_id = f.id) AS document_count
	FROM folders f`

type FolderPostgres struct {
	db *sql.DB
}

func NewFolderPostgres(db *sql.DB) *FolderPostgres {
	return &FolderPostgres{db: db}
}

var _ repository.FolderRepository = (*FolderPostgres)(nil)

func scanFolder(row rowScanner) (model.Folder, error) {
	var f model.Folder
	err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Status, &f.CreatedAt, &f.UpdatedAt, &f.DocumentCount)
	return f, err
}

func (r *FolderPostgres) Create(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	const q = `
		INSERT INTO folders (id, owner_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, owner_id, name, status, created_at, updated_at
	`
	var out model.Folder
	err := r.db.QueryRowContext(ctx, q, f.ID, f.OwnerID, f.Name, string(f.Status), f.CreatedAt, f.UpdatedAt).
		Scan(&out.ID, &out.OwnerID, &out.Name, &out.Status, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *FolderPostgres) FindByID(ctx context.Context, id string) (*model.Folder, error) {
	f, err := scanFolder(r.db.QueryRowContext(ctx, folderSelect+` WHERE f.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (r *FolderPostgres) ListByOwner(ctx context.Context, ownerID string, status model.FolderStatus, pq repository.PageQuery) (*repository.PageResult[model.Folder], error) {
	var b clauseBuilder
	b.add("f.owner_id = " + b.arg(ownerID))
	if status != "" {
		b.add("f.status = " + b.arg(string(status)))
	}
	where := b.where()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders f `+where, b.args...).Scan(&total); err != nil {
		return nil, err
	}

	q := folderSelect + ` ` + where + ` ORDER BY f.created_at DESC, f.id DESC ` + b.page(pq)
	rows, err := r.db.QueryContext(ctx, q, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Folder]{Items: items, Total: total}, nil
}

func (r *FolderPostgres) Update(ctx context.Context, id string, u model.FolderUpdate) (*model.Folder, error) {
	if u.Empty() {
		return r.FindByID(ctx, id)
	}

	var set clauseBuilder
	if u.Name != nil {
		set.add("name = " + set.arg(*u.Name))
	}
	if u.Status != nil {
		set.add("status = " + set.arg(string(*u.Status)))
	}
	set.add("updated_at = now()")

	q := `UPDATE folders SET ` + set.join(", ") + ` WHERE id = ` + set.arg(id)
	res, err := r.db.ExecContext(ctx, q, set.args...)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *FolderPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// AddDocument replaces every membership of the document with one in folderID, atomically.
func (r *FolderPostgres) AddDocument(ctx context.Context, folderID, documentID string) error {
	return database.InTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM folder_documents WHERE document_id = $1 AND folder_id <> $2`,
			documentID, folderID,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO folder_documents (folder_id, document_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			folderID, documentID,
		)
		return err
	})
}

func (r *FolderPostgres) RemoveDocument(ctx context.Context, folderID, documentID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM folder_documents WHERE folder_id = $1 AND document_id = $2`,
		folderID, documentID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *FolderPostgres) ListDocuments(ctx context.Context, folderID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM folder_documents WHERE folder_id = $1`, folderID,
	).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + documentColumns + `
		FROM documents d
		JOIN folder_documents fd ON fd.document_id = d.id
		WHERE fd.folder_id = $1
		ORDER BY fd.created_at DESC, d.id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, folderID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	items, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

func (r *FolderPostgres) AllDocuments(ctx context.Context, folderID string) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents d
		JOIN folder_documents fd ON fd.document_id = d.id
		WHERE fd.folder_id = $1
		ORDER BY fd.created_at, d.id`
	rows, err := r.db.QueryContext(ctx, q, folderID)
	if err != nil {
		return nil, err
	}
	return scanDocuments(rows)
}

func (r *FolderPostgres) DeleteMembershipsByFolder(ctx context.Context, folderID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folder_documents WHERE folder_id = $1`, folderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *FolderPostgres) DeleteMembershipsByDocument(ctx context.Context, documentID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folder_documents WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
