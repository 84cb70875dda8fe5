package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docvault/internal/config"
)

const minioKeyPrefix = "blobs/"

// User metadata keys used to round-trip blob fields through object headers.
const (
	minioMetaOriginalName = "Original-Name"
	minioMetaChunkSize    = "Chunk-Size"
)

// MinIOStore implements BlobStore on an S3-compatible backend (MinIO, AWS S3, etc.).
// The object store does its own multipart chunking; ranged reads map to GetObject range requests.
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	chunkSize int
}

var _ BlobStore = (*MinIOStore)(nil)

// NewMinIO creates the client and ensures the bucket exists (creates it if missing).
func NewMinIO(ctx context.Context, cfg config.MinIOConfig, chunkSize int) (*MinIOStore, error) {
	if err := validateMinIOConfig(cfg); err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinIOStore{client: cli, bucket: cfg.Bucket, chunkSize: chunkSize}, nil
}

func validateMinIOConfig(cfg config.MinIOConfig) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("minio bucket is required")
	}
	return nil
}

func objectKey(id string) string {
	return minioKeyPrefix + id
}

// Store streams r with an unknown size; the client uploads it in parts of chunkSize or more.
func (m *MinIOStore) Store(ctx context.Context, r io.Reader, meta BlobMeta) (BlobInfo, error) {
	id := NewBlobID()
	userMeta := map[string]string{
		minioMetaOriginalName: meta.OriginalName,
		minioMetaChunkSize:    fmt.Sprint(m.chunkSize),
	}
	for k, v := range meta.Metadata {
		userMeta[k] = v
	}

	partSize := uint64(m.chunkSize)
	if partSize < 5*1024*1024 {
		partSize = 5 * 1024 * 1024
	}
	up, err := m.client.PutObject(ctx, m.bucket, objectKey(id), r, -1, minio.PutObjectOptions{
		ContentType:  meta.ContentType,
		UserMetadata: userMeta,
		PartSize:     partSize,
	})
	if err != nil {
		return BlobInfo{}, err
	}
	return BlobInfo{
		ID:           id,
		Length:       up.Size,
		ChunkSize:    m.chunkSize,
		ContentType:  meta.ContentType,
		OriginalName: meta.OriginalName,
		Metadata:     meta.Metadata,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (m *MinIOStore) Open(ctx context.Context, id string, rng *ByteRange) (io.ReadCloser, BlobInfo, error) {
	info, err := m.Info(ctx, id)
	if err != nil {
		return nil, BlobInfo{}, err
	}
	if err := validateRange(rng, info.Length); err != nil {
		return nil, info, err
	}

	opts := minio.GetObjectOptions{}
	if rng != nil {
		if err := opts.SetRange(rng.Start, rng.End); err != nil {
			return nil, info, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
	}
	obj, err := m.client.GetObject(ctx, m.bucket, objectKey(id), opts)
	if err != nil {
		return nil, info, mapMinIOError(err)
	}
	return obj, info, nil
}

func (m *MinIOStore) Delete(ctx context.Context, id string) error {
	// RemoveObject succeeds for missing keys, so existence is checked first.
	if _, err := m.Info(ctx, id); err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, m.bucket, objectKey(id), minio.RemoveObjectOptions{})
}

func (m *MinIOStore) Info(ctx context.Context, id string) (BlobInfo, error) {
	st, err := m.client.StatObject(ctx, m.bucket, objectKey(id), minio.StatObjectOptions{})
	if err != nil {
		return BlobInfo{}, mapMinIOError(err)
	}
	return blobInfoFromStat(id, st, m.chunkSize), nil
}

func blobInfoFromStat(id string, st minio.ObjectInfo, defaultChunk int) BlobInfo {
	info := BlobInfo{
		ID:          id,
		Length:      st.Size,
		ChunkSize:   defaultChunk,
		ContentType: st.ContentType,
		CreatedAt:   st.LastModified,
		Metadata:    map[string]string{},
	}
	for k, v := range st.UserMetadata {
		switch {
		case strings.EqualFold(k, minioMetaOriginalName):
			info.OriginalName = v
		case strings.EqualFold(k, minioMetaChunkSize):
			var cs int
			if _, err := fmt.Sscan(v, &cs); err == nil && cs > 0 {
				info.ChunkSize = cs
			}
		default:
			info.Metadata[strings.ToLower(k)] = v
		}
	}
	return info
}

func mapMinIOError(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" {
		return ErrBlobNotFound
	}
	return err
}
