package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docvault/internal/access"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

const maxTitleLength = 255

// UploadPolicy limits what Upload accepts. A zero MaxBytes disables the size check
// and an empty AllowedContentTypes accepts every type.
type UploadPolicy struct {
	MaxBytes            int64
	AllowedContentTypes []string
}

// UploadInput is one file handed to Upload.
type UploadInput struct {
	Reader       io.Reader
	Title        string
	OriginalName string
	ContentType  string
	Size         int64
	Visibility   model.Visibility
	FolderID     string
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores the content as a blob, saves the record and rolls the blob back if the save fails.
	Upload(ctx context.Context, requester model.User, in UploadInput) (*model.Document, error)

	// Get returns a single document the requester may read.
	Get(ctx context.Context, requester model.User, id string) (*model.Document, error)

	// ListMine returns the requester's own documents.
	ListMine(ctx context.Context, requester model.User, f model.DocumentFilter, limit, offset int) (*DocumentListResult, error)

	// ListAccessible returns every document the requester may read.
	ListAccessible(ctx context.Context, requester model.User, f model.DocumentFilter, limit, offset int) (*DocumentListResult, error)

	// Update changes title or visibility. Only the owner or an administrator may do this.
	Update(ctx context.Context, requester model.User, id string, u model.DocumentUpdate) (*model.Document, error)
}

type documentService struct {
	Deps
	policy  UploadPolicy
	allowed map[string]struct{}
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(d Deps, policy UploadPolicy) DocumentService {
	allowed := make(map[string]struct{}, len(policy.AllowedContentTypes))
	for _, ct := range policy.AllowedContentTypes {
		allowed[normalizeContentType(ct)] = struct{}{}
	}
	return &documentService{Deps: d, policy: policy, allowed: allowed}
}

func normalizeContentType(ct string) string {
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func (s *documentService) validateUpload(in *UploadInput) error {
	if in.Reader == nil {
		return validationf("file is required")
	}
	if in.Size < 0 {
		return validationf("invalid file size")
	}
	if s.policy.MaxBytes > 0 && in.Size > s.policy.MaxBytes {
		return validationf("file exceeds the %d byte limit", s.policy.MaxBytes)
	}

	in.ContentType = normalizeContentType(in.ContentType)
	if in.ContentType == "" {
		in.ContentType = "application/octet-stream"
	}
	if len(s.allowed) > 0 {
		if _, ok := s.allowed[in.ContentType]; !ok {
			return validationf("file type %q is not allowed", in.ContentType)
		}
	}

	in.OriginalName = filepath.Base(strings.TrimSpace(in.OriginalName))
	if in.OriginalName == "." || in.OriginalName == string(filepath.Separator) {
		in.OriginalName = ""
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = strings.TrimSuffix(in.OriginalName, filepath.Ext(in.OriginalName))
	}
	if in.Title == "" {
		return validationf("title is required")
	}
	if len(in.Title) > maxTitleLength {
		return validationf("title must be at most %d characters", maxTitleLength)
	}

	if in.Visibility == "" {
		in.Visibility = model.VisibilityPrivate
	}
	if !in.Visibility.Valid() {
		return validationf("invalid visibility %q", in.Visibility)
	}
	return nil
}

func (s *documentService) Upload(ctx context.Context, requester model.User, in UploadInput) (*model.Document, error) {
	if err := s.validateUpload(&in); err != nil {
		return nil, err
	}

	if in.FolderID != "" {
		folder, err := s.findFolder(ctx, in.FolderID)
		if err != nil {
			return nil, err
		}
		if !isOwnerOrAdmin(requester, folder.OwnerID) {
			return nil, fmt.Errorf("%w: you cannot upload into this folder", ErrAccessDenied)
		}
	}

	info, err := s.Store.Store(ctx, in.Reader, storage.BlobMeta{
		ContentType:  in.ContentType,
		OriginalName: in.OriginalName,
		Metadata: map[string]string{
			storage.MetaUploaderID:         requester.ID,
			storage.MetaUploaderRole:       requester.Role,
			storage.MetaUploaderDepartment: requester.DepartmentID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: store blob: %v", ErrStorage, err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:           uuid.New().String(),
		OwnerID:      requester.ID,
		Title:        in.Title,
		BlobID:       info.ID,
		OriginalName: in.OriginalName,
		Visibility:   in.Visibility,
		ContentType:  in.ContentType,
		Size:         info.Length,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	stored, err := s.Documents.Create(ctx, doc)
	if err != nil {
		if delErr := s.Store.Delete(ctx, info.ID); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if in.FolderID != "" {
		if err := s.Folders.AddDocument(ctx, in.FolderID, stored.ID); err != nil {
			s.rollbackUpload(ctx, stored)
			return nil, fmt.Errorf("add to folder: %w", err)
		}
	}

	s.logger().Info("document_uploaded",
		zap.String("document_id", stored.ID),
		zap.String("owner_id", stored.OwnerID),
		zap.String("blob_id", stored.BlobID),
		zap.Int64("size", stored.Size),
	)
	return stored, nil
}

// rollbackUpload removes a record and its blob after a failed folder insert.
func (s *documentService) rollbackUpload(ctx context.Context, doc *model.Document) {
	ctx = context.WithoutCancel(ctx)
	if err := s.Documents.Delete(ctx, doc.ID); err != nil {
		s.logger().Warn("upload_rollback_failed", zap.String("document_id", doc.ID), zap.Error(err))
	}
	if err := s.Store.Delete(ctx, doc.BlobID); err != nil {
		s.logger().Warn("upload_rollback_failed", zap.String("blob_id", doc.BlobID), zap.Error(err))
	}
}

func (s *documentService) Get(ctx context.Context, requester model.User, id string) (*model.Document, error) {
	if id == "" {
		return nil, validationf("id is required")
	}
	return s.authorizeRead(ctx, requester, id)
}

func validateFilter(f model.DocumentFilter) error {
	if f.Visibility != "" && !f.Visibility.Valid() {
		return validationf("invalid visibility %q", f.Visibility)
	}
	return nil
}

func (s *documentService) ListMine(ctx context.Context, requester model.User, f model.DocumentFilter, limit, offset int) (*DocumentListResult, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	pq := pageQuery(limit, offset)
	res, err := s.Documents.ListByOwner(ctx, requester.ID, f, pq)
	if err != nil {
		return nil, err
	}
	return toListResult(res, pq), nil
}

func (s *documentService) ListAccessible(ctx context.Context, requester model.User, f model.DocumentFilter, limit, offset int) (*DocumentListResult, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	pq := pageQuery(limit, offset)
	scope := access.ScopeFor(access.SubjectFromUser(requester))
	res, err := s.Documents.ListAccessible(ctx, scope, f, pq)
	if err != nil {
		return nil, err
	}
	return toListResult(res, pq), nil
}

func (s *documentService) Update(ctx context.Context, requester model.User, id string, u model.DocumentUpdate) (*model.Document, error) {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return nil, validationf("title cannot be empty")
		}
		if len(title) > maxTitleLength {
			return nil, validationf("title must be at most %d characters", maxTitleLength)
		}
		u.Title = &title
	}
	if u.Visibility != nil && !u.Visibility.Valid() {
		return nil, validationf("invalid visibility %q", *u.Visibility)
	}

	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(requester, doc.OwnerID) {
		return nil, fmt.Errorf("%w: only the owner can edit this document", ErrAccessDenied)
	}
	if u.Empty() {
		return doc, nil
	}

	updated, err := s.Documents.Update(ctx, id, u)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: document not found", ErrNotFound)
		}
		return nil, err
	}

	if requester.ID != doc.OwnerID {
		s.notify(ctx, adminActionNotice(requester, doc.OwnerID,
			"Document updated by administrator",
			fmt.Sprintf("%s updated your document %q", requester.Name, doc.Title),
		))
	}
	return updated, nil
}
