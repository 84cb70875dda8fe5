package repository

import (
	"context"

	"docvault/internal/model"
)

// FolderRepository persists folders and their memberships.
type FolderRepository interface {
	Create(ctx context.Context, f *model.Folder) (*model.Folder, error)
	// FindByID returns the folder with its document count.
	FindByID(ctx context.Context, id string) (*model.Folder, error)
	// ListByOwner filters by status when it is non-empty.
	ListByOwner(ctx context.Context, ownerID string, status model.FolderStatus, pq PageQuery) (*PageResult[model.Folder], error)
	Update(ctx context.Context, id string, u model.FolderUpdate) (*model.Folder, error)
	Delete(ctx context.Context, id string) error

	// AddDocument moves the document into the folder, replacing its other memberships.
	AddDocument(ctx context.Context, folderID, documentID string) error
	// RemoveDocument returns ErrNotFound when the document is not in the folder.
	RemoveDocument(ctx context.Context, folderID, documentID string) error
	ListDocuments(ctx context.Context, folderID string, pq PageQuery) (*PageResult[model.Document], error)
	// AllDocuments returns every document in the folder, used by cascading deletes.
	AllDocuments(ctx context.Context, folderID string) ([]model.Document, error)

	DeleteMembershipsByFolder(ctx context.Context, folderID string) (int64, error)
	DeleteMembershipsByDocument(ctx context.Context, documentID string) (int64, error)
}
