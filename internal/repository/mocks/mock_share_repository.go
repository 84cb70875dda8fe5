package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockShareRepository struct {
	mock.Mock
}

func (m *MockShareRepository) Create(ctx context.Context, g *model.ShareGrant) (*model.ShareGrant, bool, error) {
	args := m.Called(ctx, g)
	var stored *model.ShareGrant
	if v := args.Get(0); v != nil {
		stored = v.(*model.ShareGrant)
	}
	return stored, args.Bool(1), args.Error(2)
}

func (m *MockShareRepository) FindByID(ctx context.Context, id string) (*model.ShareGrant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareGrant), args.Error(1)
}

func (m *MockShareRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockShareRepository) ListByDocument(ctx context.Context, documentID, grantorID string) ([]model.ShareGrant, error) {
	args := m.Called(ctx, documentID, grantorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareGrant), args.Error(1)
}

func (m *MockShareRepository) ListByGrantee(ctx context.Context, granteeID string, pq repository.PageQuery) (*repository.PageResult[model.SharedDocument], error) {
	args := m.Called(ctx, granteeID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.SharedDocument]), args.Error(1)
}

func (m *MockShareRepository) ListByGrantor(ctx context.Context, grantorID string, pq repository.PageQuery) (*repository.PageResult[model.SharedDocument], error) {
	args := m.Called(ctx, grantorID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.SharedDocument]), args.Error(1)
}

func (m *MockShareRepository) GranteeIDs(ctx context.Context, documentID string) ([]string, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockShareRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	args := m.Called(ctx, documentID)
	return args.Int(0), args.Error(1)
}

func (m *MockShareRepository) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
