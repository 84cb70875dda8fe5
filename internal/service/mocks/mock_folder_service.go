package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) Create(ctx context.Context, requester model.User, name string) (*model.Folder, error) {
	args := m.Called(ctx, requester, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Get(ctx context.Context, requester model.User, id string) (*model.Folder, error) {
	args := m.Called(ctx, requester, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) List(ctx context.Context, requester model.User, status model.FolderStatus, limit, offset int) (*service.FolderListResult, error) {
	args := m.Called(ctx, requester, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FolderListResult), args.Error(1)
}

func (m *MockFolderService) Update(ctx context.Context, requester model.User, id string, u model.FolderUpdate) (*model.Folder, error) {
	args := m.Called(ctx, requester, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) AddDocument(ctx context.Context, requester model.User, folderID, documentID string) error {
	return m.Called(ctx, requester, folderID, documentID).Error(0)
}

func (m *MockFolderService) RemoveDocument(ctx context.Context, requester model.User, folderID, documentID string) error {
	return m.Called(ctx, requester, folderID, documentID).Error(0)
}

func (m *MockFolderService) ListDocuments(ctx context.Context, requester model.User, folderID string, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, requester, folderID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}
