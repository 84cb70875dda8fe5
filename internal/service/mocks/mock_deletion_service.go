package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDeletionService struct {
	mock.Mock
}

func (m *MockDeletionService) DeleteDocument(ctx context.Context, actor model.User, id string, force bool) (*service.DocumentDeletion, error) {
	args := m.Called(ctx, actor, id, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentDeletion), args.Error(1)
}

func (m *MockDeletionService) DeleteFolder(ctx context.Context, actor model.User, id string, deleteDocuments, force bool) (*service.FolderDeletion, error) {
	args := m.Called(ctx, actor, id, deleteDocuments, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FolderDeletion), args.Error(1)
}
