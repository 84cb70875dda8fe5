package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, requester model.User, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, requester, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, requester model.User, id string) (*model.Document, error) {
	args := m.Called(ctx, requester, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) ListMine(ctx context.Context, requester model.User, f model.DocumentFilter, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, requester, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) ListAccessible(ctx context.Context, requester model.User, f model.DocumentFilter, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, requester, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, requester model.User, id string, u model.DocumentUpdate) (*model.Document, error) {
	args := m.Called(ctx, requester, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
