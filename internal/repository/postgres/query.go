package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"docvault/internal/model"
	"docvault/internal/repository"
)

const documentColumns = `d.id, d.owner_id, d.title, d.blob_id, d.original_name, d.visibility, d.content_type, d.size, d.created_at, d.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (model.Document, error) {
	var d model.Document
	err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Title,
		&d.BlobID,
		&d.OriginalName,
		&d.Visibility,
		&d.ContentType,
		&d.Size,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

func scanDocuments(rows *sql.Rows) ([]model.Document, error) {
	defer rows.Close()
	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// notFound maps sql.ErrNoRows to repository.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// clauseBuilder collects SQL fragments and numbers their positional arguments.
type clauseBuilder struct {
	parts []string
	args  []any
}

// arg registers v and returns its placeholder.
func (b *clauseBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *clauseBuilder) add(part string) {
	b.parts = append(b.parts, part)
}

func (b *clauseBuilder) join(sep string) string {
	return strings.Join(b.parts, sep)
}

// where renders "WHERE a AND b" or an empty string.
func (b *clauseBuilder) where() string {
	if len(b.parts) == 0 {
		return ""
	}
	return "WHERE " + b.join(" AND ")
}

func (b *clauseBuilder) applyFilter(f model.DocumentFilter) {
	if s := strings.TrimSpace(f.Search); s != "" {
		b.add("d.title ILIKE " + b.arg(containsPattern(s)) + ` ESCAPE '\'`)
	}
	if ct := strings.TrimSpace(f.ContentType); ct != "" {
		b.add("d.content_type ILIKE " + b.arg(containsPattern(ct)) + ` ESCAPE '\'`)
	}
	if f.Visibility != "" {
		b.add("d.visibility = " + b.arg(string(f.Visibility)))
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches s literally anywhere in the column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (b *clauseBuilder) page(pq repository.PageQuery) string {
	return fmt.Sprintf("LIMIT %s OFFSET %s", b.arg(pq.Limit), b.arg(pq.Offset))
}
