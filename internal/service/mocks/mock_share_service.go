package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockShareService struct {
	mock.Mock
}

func (m *MockShareService) Share(ctx context.Context, requester model.User, documentID string, granteeIDs []string) (*service.ShareResult, error) {
	args := m.Called(ctx, requester, documentID, granteeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShareResult), args.Error(1)
}

func (m *MockShareService) Revoke(ctx context.Context, requester model.User, grantID string) error {
	return m.Called(ctx, requester, grantID).Error(0)
}

func (m *MockShareService) ListByDocument(ctx context.Context, requester model.User, documentID string) ([]model.ShareGrant, error) {
	args := m.Called(ctx, requester, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareGrant), args.Error(1)
}

func (m *MockShareService) ListSharedWithMe(ctx context.Context, requester model.User, limit, offset int) (*service.SharedListResult, error) {
	args := m.Called(ctx, requester, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SharedListResult), args.Error(1)
}

func (m *MockShareService) ListSharedByMe(ctx context.Context, requester model.User, limit, offset int) (*service.SharedListResult, error) {
	args := m.Called(ctx, requester, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SharedListResult), args.Error(1)
}
