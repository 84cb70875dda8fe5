package repository

import (
	"context"

	"docvault/internal/access"
	"docvault/internal/model"
)

// DocumentRepository defines data access for document records using SQL queries only.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByOwner returns the owner's documents matching the filter, newest first.
	ListByOwner(ctx context.Context, ownerID string, f model.DocumentFilter, pq PageQuery) (*PageResult[model.Document], error)

	// ListAccessible returns every document inside scope matching the filter, newest first.
	ListAccessible(ctx context.Context, scope access.Scope, f model.DocumentFilter, pq PageQuery) (*PageResult[model.Document], error)

	// Update applies the non-nil fields and returns the updated row.
	Update(ctx context.Context, id string, u model.DocumentUpdate) (*model.Document, error)

	// Delete removes the record only. Shares and memberships are removed by their own repositories.
	Delete(ctx context.Context, id string) error
}
