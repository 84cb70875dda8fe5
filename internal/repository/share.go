package repository

import (
	"context"

	"docvault/internal/model"
)

// ShareRepository persists share grants.
type ShareRepository interface {
	// Create inserts the grant. created is false when an identical grant already exists.
	Create(ctx context.Context, g *model.ShareGrant) (stored *model.ShareGrant, created bool, err error)
	FindByID(ctx context.Context, id string) (*model.ShareGrant, error)
	Delete(ctx context.Context, id string) error

	// ListByDocument returns grants on the document; an empty grantorID returns all of them.
	ListByDocument(ctx context.Context, documentID, grantorID string) ([]model.ShareGrant, error)
	ListByGrantee(ctx context.Context, granteeID string, pq PageQuery) (*PageResult[model.SharedDocument], error)
	ListByGrantor(ctx context.Context, grantorID string, pq PageQuery) (*PageResult[model.SharedDocument], error)

	GranteeIDs(ctx context.Context, documentID string) ([]string, error)
	CountByDocument(ctx context.Context, documentID string) (int, error)
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)
}

// UserDirectory is the read-only lookup of users.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}
