package storage

import (
	"context"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"docvault/internal/config"
)

func TestNewMinIO_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MinIOConfig
		wantErr string
	}{
		{name: "missing endpoint", cfg: config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}, wantErr: "minio endpoint is required"},
		{name: "missing credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}, wantErr: "minio credentials are required"},
		{name: "missing bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, wantErr: "minio bucket is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewMinIO(context.Background(), tt.cfg, 0)
			assert.Nil(t, store)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestBlobInfoFromStat(t *testing.T) {
	now := time.Now()
	st := minio.ObjectInfo{
		Size:         5,
		ContentType:  "application/pdf",
		LastModified: now,
		UserMetadata: map[string]string{
			"Original-Name": "notes.pdf",
			"Chunk-Size":    "1024",
			"Uploader_id":   "u1",
		},
	}

	info := blobInfoFromStat("01HX", st, DefaultChunkSize)

	assert.Equal(t, "01HX", info.ID)
	assert.Equal(t, int64(5), info.Length)
	assert.Equal(t, 1024, info.ChunkSize)
	assert.Equal(t, "notes.pdf", info.OriginalName)
	assert.Equal(t, "application/pdf", info.ContentType)
	assert.Equal(t, map[string]string{MetaUploaderID: "u1"}, info.Metadata)
	assert.Equal(t, now, info.CreatedAt)
}

func TestMapMinIOError(t *testing.T) {
	notFound := minio.ErrorResponse{StatusCode: 404, Code: "NoSuchKey"}
	assert.ErrorIs(t, mapMinIOError(notFound), ErrBlobNotFound)

	denied := minio.ErrorResponse{StatusCode: 403, Code: "AccessDenied"}
	assert.Equal(t, denied, mapMinIOError(denied))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "blobs/01HX", objectKey("01HX"))
}
