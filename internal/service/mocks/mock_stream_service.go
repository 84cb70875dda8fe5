package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockStreamService struct {
	mock.Mock
}

func (m *MockStreamService) Open(ctx context.Context, requester model.User, documentID, rangeHeader string) (*service.StreamResult, error) {
	args := m.Called(ctx, requester, documentID, rangeHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StreamResult), args.Error(1)
}
