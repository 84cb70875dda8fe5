package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/access"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents AS d (id, owner_id, title, blob_id, original_name, visibility, content_type, size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		doc.BlobID,
		doc.OriginalName,
		string(doc.Visibility),
		doc.ContentType,
		doc.Size,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents d WHERE d.id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// ListByOwner returns the owner's documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID string, f model.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	var b clauseBuilder
	b.add("d.owner_id = " + b.arg(ownerID))
	b.applyFilter(f)
	return r.list(ctx, "FROM documents d", &b, pq)
}

// ListAccessible renders the scope as a disjunction: ownership, public visibility,
// owner department, explicit grant. An unrestricted scope skips the disjunction.
func (r *DocumentPostgres) ListAccessible(ctx context.Context, scope access.Scope, f model.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	var b clauseBuilder
	if !scope.All {
		var or clauseBuilder
		user := b.arg(scope.UserID)
		or.add("d.owner_id = " + user)
		if scope.Public {
			or.add("d.visibility = 'public'")
		}
		if scope.Department != "" {
			or.add("u.department_id = " + b.arg(scope.Department))
		}
		if scope.Grants {
			or.add("EXISTS (SELECT 1 FROM share_grants g WHERE g.document_id = d.id AND g.grantee_id = " + user + ")")
		}
		b.add("(" + or.join(" OR ") + ")")
	}
	b.applyFilter(f)
	return r.list(ctx, "FROM documents d LEFT JOIN users u ON u.id = d.owner_id", &b, pq)
}

func (r *DocumentPostgres) list(ctx context.Context, from string, b *clauseBuilder, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	where := b.where()

	var total int
	qCount := `SELECT COUNT(*) ` + from + ` ` + where
	if err := r.db.QueryRowContext(ctx, qCount, b.args...).Scan(&total); err != nil {
		return nil, err
	}

	page := b.page(pq)
	qList := `SELECT ` + documentColumns + ` ` + from + ` ` + where + `
		ORDER BY d.created_at DESC, d.id DESC ` + page
	rows, err := r.db.QueryContext(ctx, qList, b.args...)
	if err != nil {
		return nil, err
	}
	items, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Update sets the given fields and bumps updated_at. An empty update returns the current row.
func (r *DocumentPostgres) Update(ctx context.Context, id string, u model.DocumentUpdate) (*model.Document, error) {
	if u.Empty() {
		return r.FindByID(ctx, id)
	}

	var set clauseBuilder
	if u.Title != nil {
		set.add("title = " + set.arg(*u.Title))
	}
	if u.Visibility != nil {
		set.add("visibility = " + set.arg(string(*u.Visibility)))
	}
	set.add("updated_at = now()")

	q := `UPDATE documents AS d SET ` + set.join(", ") + ` WHERE d.id = ` + set.arg(id) + ` RETURNING ` + documentColumns
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, set.args...))
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// Delete removes a document by ID; a missing row is reported as repository.ErrNotFound.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
