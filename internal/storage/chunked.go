package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ChunkBackend is the persistence used by the chunked store: one manifest per blob plus
// numbered chunks. Missing manifests and chunks are reported as ErrBlobNotFound.
type ChunkBackend interface {
	PutChunk(ctx context.Context, blobID string, n int64, data []byte) error
	GetChunk(ctx context.Context, blobID string, n int64) ([]byte, error)
	PutManifest(ctx context.Context, info BlobInfo) error
	GetManifest(ctx context.Context, blobID string) (BlobInfo, error)
	// DeleteBlob removes the manifest and every chunk of the blob.
	DeleteBlob(ctx context.Context, blobID string) error
}

// ChunkedStore splits content into fixed-size chunks over a ChunkBackend.
type ChunkedStore struct {
	backend   ChunkBackend
	chunkSize int
	now       func() time.Time
}

var _ BlobStore = (*ChunkedStore)(nil)

func NewChunkedStore(backend ChunkBackend, chunkSize int) *ChunkedStore {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkedStore{backend: backend, chunkSize: chunkSize, now: time.Now}
}

// Store holds at most one chunk in memory. The manifest is written last, so a blob is
// visible only once all of its chunks are in place.
func (s *ChunkedStore) Store(ctx context.Context, r io.Reader, meta BlobMeta) (BlobInfo, error) {
	if r == nil {
		return BlobInfo{}, errors.New("reader is nil")
	}

	id := NewBlobID()
	buf := make([]byte, s.chunkSize)
	var n, total int64

	for {
		read, rerr := io.ReadFull(r, buf)
		if read > 0 {
			if err := s.backend.PutChunk(ctx, id, n, buf[:read]); err != nil {
				s.discard(ctx, id)
				return BlobInfo{}, fmt.Errorf("write chunk %d: %w", n, err)
			}
			n++
			total += int64(read)
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			s.discard(ctx, id)
			return BlobInfo{}, fmt.Errorf("read content: %w", rerr)
		}
	}

	info := BlobInfo{
		ID:           id,
		Length:       total,
		ChunkSize:    s.chunkSize,
		ContentType:  meta.ContentType,
		OriginalName: meta.OriginalName,
		Metadata:     meta.Metadata,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.backend.PutManifest(ctx, info); err != nil {
		s.discard(ctx, id)
		return BlobInfo{}, fmt.Errorf("write manifest: %w", err)
	}
	return info, nil
}

// discard removes partially written chunks. It runs even if ctx was cancelled.
func (s *ChunkedStore) discard(ctx context.Context, id string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	_ = s.backend.DeleteBlob(cctx, id)
}

func (s *ChunkedStore) Open(ctx context.Context, id string, rng *ByteRange) (io.ReadCloser, BlobInfo, error) {
	info, err := s.backend.GetManifest(ctx, id)
	if err != nil {
		return nil, BlobInfo{}, err
	}
	if err := validateRange(rng, info.Length); err != nil {
		return nil, info, err
	}
	if info.Length == 0 {
		return io.NopCloser(bytes.NewReader(nil)), info, nil
	}

	window := ByteRange{Start: 0, End: info.Length - 1}
	if rng != nil {
		window = *rng
	}
	cs := int64(info.ChunkSize)
	return &chunkReader{
		ctx:       ctx,
		backend:   s.backend,
		info:      info,
		next:      window.Start / cs,
		last:      window.End / cs,
		skip:      window.Start % cs,
		remaining: window.Len(),
	}, info, nil
}

func (s *ChunkedStore) Delete(ctx context.Context, id string) error {
	return s.backend.DeleteBlob(ctx, id)
}

func (s *ChunkedStore) Info(ctx context.Context, id string) (BlobInfo, error) {
	return s.backend.GetManifest(ctx, id)
}

// chunkReader fetches chunks next..last lazily, one at a time, and yields exactly
// remaining bytes starting skip bytes into the first chunk.
type chunkReader struct {
	ctx       context.Context
	backend   ChunkBackend
	info      BlobInfo
	next      int64
	last      int64
	skip      int64
	remaining int64
	buf       []byte
	err       error
	closed    bool
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, errors.New("read on closed blob reader")
	}
	if r.remaining == 0 {
		return 0, io.EOF
	}
	if r.err != nil {
		return 0, r.err
	}
	if len(p) == 0 {
		return 0, nil
	}

	if len(r.buf) == 0 {
		if err := r.fill(); err != nil {
			r.err = err
			return 0, err
		}
	}

	want := int64(len(p))
	if want > r.remaining {
		want = r.remaining
	}
	if want > int64(len(r.buf)) {
		want = int64(len(r.buf))
	}
	n := copy(p, r.buf[:want])
	r.buf = r.buf[n:]
	r.remaining -= int64(n)
	return n, nil
}

func (r *chunkReader) fill() error {
	if r.next > r.last {
		return io.ErrUnexpectedEOF
	}
	data, err := r.backend.GetChunk(r.ctx, r.info.ID, r.next)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return fmt.Errorf("%w: chunk %d of %s missing", ErrCorruptBlob, r.next, r.info.ID)
		}
		return fmt.Errorf("read chunk %d: %w", r.next, err)
	}
	if want := r.expectedLen(r.next); int64(len(data)) != want {
		return fmt.Errorf("%w: chunk %d of %s has %d bytes, want %d", ErrCorruptBlob, r.next, r.info.ID, len(data), want)
	}
	if r.skip > 0 {
		data = data[r.skip:]
		r.skip = 0
	}
	r.buf = data
	r.next++
	return nil
}

// expectedLen is min(chunkSize, length - n*chunkSize).
func (r *chunkReader) expectedLen(n int64) int64 {
	cs := int64(r.info.ChunkSize)
	rest := r.info.Length - n*cs
	if rest < cs {
		return rest
	}
	return cs
}

func (r *chunkReader) Close() error {
	r.closed = true
	r.buf = nil
	return nil
}
