package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"docvault/internal/model"
	"docvault/internal/storage"
)

// StreamResult is an open blob window ready to be copied to a client.
// Range is nil when the whole blob is served. Body must be closed.
type StreamResult struct {
	Body     io.ReadCloser
	Document *model.Document
	Range    *storage.ByteRange
	Size     int64
}

// ContentLength is the number of bytes Body yields.
func (r *StreamResult) ContentLength() int64 {
	if r.Range != nil {
		return r.Range.Len()
	}
	return r.Size
}

// ContentRange is the Content-Range value for partial responses.
func (r *StreamResult) ContentRange() string {
	if r.Range == nil {
		return ""
	}
	return fmt.Sprintf("bytes %d-%d/%d", r.Range.Start, r.Range.End, r.Size)
}

type StreamService interface {
	// Open authorizes the requester and opens the window named by rangeHeader.
	// An empty header opens the whole blob.
	Open(ctx context.Context, requester model.User, documentID, rangeHeader string) (*StreamResult, error)
}

type streamService struct {
	Deps
}

func NewStreamService(d Deps) StreamService {
	return &streamService{Deps: d}
}

func (s *streamService) Open(ctx context.Context, requester model.User, documentID, rangeHeader string) (*StreamResult, error) {
	doc, err := s.authorizeRead(ctx, requester, documentID)
	if err != nil {
		return nil, err
	}

	info, err := s.Store.Info(ctx, doc.BlobID)
	if err != nil {
		return nil, blobError(err, 0)
	}

	rng, err := ParseRange(rangeHeader, info.Length)
	if err != nil {
		return nil, err
	}

	body, _, err := s.Store.Open(ctx, doc.BlobID, rng)
	if err != nil {
		return nil, blobError(err, info.Length)
	}
	return &StreamResult{Body: body, Document: doc, Range: rng, Size: info.Length}, nil
}

func blobError(err error, size int64) error {
	switch {
	case errors.Is(err, storage.ErrBlobNotFound):
		return fmt.Errorf("%w: file not found in storage", ErrNotFound)
	case errors.Is(err, storage.ErrInvalidRange):
		return &RangeError{Size: size}
	default:
		return fmt.Errorf("%w: open blob: %v", ErrStorage, err)
	}
}

// ParseRange parses a single "bytes=a-b" or "bytes=a-" header against a blob of size bytes.
// An end past the blob is clamped to the last byte. Anything else that is not satisfiable,
// including multiple ranges and suffix ranges, yields a *RangeError.
func ParseRange(header string, size int64) (*storage.ByteRange, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}
	unsatisfiable := &RangeError{Size: size}

	window, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(window, ",") {
		return nil, unsatisfiable
	}
	first, last, ok := strings.Cut(strings.TrimSpace(window), "-")
	if !ok || first == "" {
		return nil, unsatisfiable
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 || start >= size {
		return nil, unsatisfiable
	}
	end := size - 1
	if last != "" {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return nil, unsatisfiable
		}
		if end >= size {
			end = size - 1
		}
	}
	return &storage.ByteRange{Start: start, End: end}, nil
}
