// Package storage persists binary content as blobs, independent of document metadata.
// Content is written sequentially and can be read back whole or as a byte window.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultChunkSize is used when a store is built with a non-positive chunk size.
const DefaultChunkSize = 255 * 1024

// Metadata keys attached to every blob at upload time.
const (
	MetaUploaderID         = "uploader_id"
	MetaUploaderRole       = "uploader_role"
	MetaUploaderDepartment = "uploader_department"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidRange = errors.New("invalid byte range")
	ErrCorruptBlob  = errors.New("blob is corrupt")
)

// BlobMeta describes content handed to Store.
type BlobMeta struct {
	ContentType  string
	OriginalName string
	Metadata     map[string]string
}

// BlobInfo is the manifest of a stored blob. It never changes after Store returns.
type BlobInfo struct {
	ID           string
	Length       int64
	ChunkSize    int
	ContentType  string
	OriginalName string
	Metadata     map[string]string
	CreatedAt    time.Time
}

// ByteRange is an inclusive window [Start, End] into a blob.
type ByteRange struct {
	Start int64
	End   int64
}

// Len is the number of bytes covered by the window.
func (r ByteRange) Len() int64 {
	return r.End - r.Start + 1
}

// BlobStore is the chunked content store used by the document services.
// Implementations are safe for concurrent use.
type BlobStore interface {
	// Store consumes r until EOF and persists it as a new blob.
	Store(ctx context.Context, r io.Reader, meta BlobMeta) (BlobInfo, error)
	// Open returns a lazy reader over the whole blob (rng == nil) or exactly rng.Len() bytes of it.
	Open(ctx context.Context, id string, rng *ByteRange) (io.ReadCloser, BlobInfo, error)
	// Delete removes the blob with all of its chunks.
	Delete(ctx context.Context, id string) error
	// Info returns the manifest of a blob.
	Info(ctx context.Context, id string) (BlobInfo, error)
}

// NewBlobID returns a new time-ordered blob identifier.
func NewBlobID() string {
	return ulid.Make().String()
}

func validateRange(rng *ByteRange, length int64) error {
	if rng == nil {
		return nil
	}
	if rng.Start < 0 || rng.Start > rng.End || rng.End >= length {
		return ErrInvalidRange
	}
	return nil
}
