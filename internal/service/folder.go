package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
)

const maxFolderNameLength = 255

type FolderListResult = ListResult[model.Folder]

// FolderService manages folders and their document memberships.
// Mutations require the folder owner or an administrator.
type FolderService interface {
	Create(ctx context.Context, requester model.User, name string) (*model.Folder, error)
	Get(ctx context.Context, requester model.User, id string) (*model.Folder, error)
	List(ctx context.Context, requester model.User, status model.FolderStatus, limit, offset int) (*FolderListResult, error)
	Update(ctx context.Context, requester model.User, id string, u model.FolderUpdate) (*model.Folder, error)
	// AddDocument moves the document into the folder, leaving any previous folder.
	AddDocument(ctx context.Context, requester model.User, folderID, documentID string) error
	RemoveDocument(ctx context.Context, requester model.User, folderID, documentID string) error
	ListDocuments(ctx context.Context, requester model.User, folderID string, limit, offset int) (*DocumentListResult, error)
}

type folderService struct {
	Deps
}

func NewFolderService(d Deps) FolderService {
	return &folderService{Deps: d}
}

func validateFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationf("name is required")
	}
	if len(name) > maxFolderNameLength {
		return "", validationf("name must be at most %d characters", maxFolderNameLength)
	}
	return name, nil
}

func (s *folderService) Create(ctx context.Context, requester model.User, name string) (*model.Folder, error) {
	name, err := validateFolderName(name)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.Folders.Create(ctx, &model.Folder{
		ID:        uuid.New().String(),
		OwnerID:   requester.ID,
		Name:      name,
		Status:    model.FolderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// ownedFolder loads a folder the requester may manage.
func (s *folderService) ownedFolder(ctx context.Context, requester model.User, id string) (*model.Folder, error) {
	f, err := s.findFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(requester, f.OwnerID) {
		return nil, fmt.Errorf("%w: you do not own this folder", ErrAccessDenied)
	}
	return f, nil
}

func (s *folderService) Get(ctx context.Context, requester model.User, id string) (*model.Folder, error) {
	return s.ownedFolder(ctx, requester, id)
}

func (s *folderService) List(ctx context.Context, requester model.User, status model.FolderStatus, limit, offset int) (*FolderListResult, error) {
	if status != "" && !status.Valid() {
		return nil, validationf("invalid status %q", status)
	}
	pq := pageQuery(limit, offset)
	res, err := s.Folders.ListByOwner(ctx, requester.ID, status, pq)
	if err != nil {
		return nil, err
	}
	return toListResult(res, pq), nil
}

func (s *folderService) Update(ctx context.Context, requester model.User, id string, u model.FolderUpdate) (*model.Folder, error) {
	if u.Name != nil {
		name, err := validateFolderName(*u.Name)
		if err != nil {
			return nil, err
		}
		u.Name = &name
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, validationf("invalid status %q", *u.Status)
	}

	f, err := s.ownedFolder(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if u.Empty() {
		return f, nil
	}
	updated, err := s.Folders.Update(ctx, id, u)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: folder not found", ErrNotFound)
	}
	return updated, err
}

func (s *folderService) AddDocument(ctx context.Context, requester model.User, folderID, documentID string) error {
	if documentID == "" {
		return validationf("document_id is required")
	}
	if _, err := s.ownedFolder(ctx, requester, folderID); err != nil {
		return err
	}
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if !isOwnerOrAdmin(requester, doc.OwnerID) {
		return fmt.Errorf("%w: you do not own this document", ErrAccessDenied)
	}
	return s.Folders.AddDocument(ctx, folderID, documentID)
}

func (s *folderService) RemoveDocument(ctx context.Context, requester model.User, folderID, documentID string) error {
	if _, err := s.ownedFolder(ctx, requester, folderID); err != nil {
		return err
	}
	err := s.Folders.RemoveDocument(ctx, folderID, documentID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: document is not in this folder", ErrNotFound)
	}
	return err
}

func (s *folderService) ListDocuments(ctx context.Context, requester model.User, folderID string, limit, offset int) (*DocumentListResult, error) {
	if _, err := s.ownedFolder(ctx, requester, folderID); err != nil {
		return nil, err
	}
	pq := pageQuery(limit, offset)
	res, err := s.Folders.ListDocuments(ctx, folderID, pq)
	if err != nil {
		return nil, err
	}
	return toListResult(res, pq), nil
}
