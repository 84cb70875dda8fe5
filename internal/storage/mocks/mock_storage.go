package mocks

import (
	"context"
	"io"

	"docvault/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Store(ctx context.Context, r io.Reader, meta storage.BlobMeta) (storage.BlobInfo, error) {
	args := m.Called(ctx, r, meta)
	if f, ok := args.Get(0).(func(context.Context, io.Reader, storage.BlobMeta) storage.BlobInfo); ok {
		return f(ctx, r, meta), args.Error(1)
	}
	return args.Get(0).(storage.BlobInfo), args.Error(1)
}

func (m *MockBlobStore) Open(ctx context.Context, id string, rng *storage.ByteRange) (io.ReadCloser, storage.BlobInfo, error) {
	args := m.Called(ctx, id, rng)
	var rc io.ReadCloser
	if v := args.Get(0); v != nil {
		rc = v.(io.ReadCloser)
	}
	return rc, args.Get(1).(storage.BlobInfo), args.Error(2)
}

func (m *MockBlobStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBlobStore) Info(ctx context.Context, id string) (storage.BlobInfo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(storage.BlobInfo), args.Error(1)
}
