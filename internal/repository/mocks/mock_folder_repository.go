package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockFolderRepository struct {
	mock.Mock
}

func (m *MockFolderRepository) Create(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) FindByID(ctx context.Context, id string) (*model.Folder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) ListByOwner(ctx context.Context, ownerID string, status model.FolderStatus, pq repository.PageQuery) (*repository.PageResult[model.Folder], error) {
	args := m.Called(ctx, ownerID, status, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Folder]), args.Error(1)
}

func (m *MockFolderRepository) Update(ctx context.Context, id string, u model.FolderUpdate) (*model.Folder, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFolderRepository) AddDocument(ctx context.Context, folderID, documentID string) error {
	return m.Called(ctx, folderID, documentID).Error(0)
}

func (m *MockFolderRepository) RemoveDocument(ctx context.Context, folderID, documentID string) error {
	return m.Called(ctx, folderID, documentID).Error(0)
}

func (m *MockFolderRepository) ListDocuments(ctx context.Context, folderID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, folderID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockFolderRepository) AllDocuments(ctx context.Context, folderID string) ([]model.Document, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockFolderRepository) DeleteMembershipsByFolder(ctx context.Context, folderID string) (int64, error) {
	args := m.Called(ctx, folderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFolderRepository) DeleteMembershipsByDocument(ctx context.Context, documentID string) (int64, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).(int64), args.Error(1)
}
