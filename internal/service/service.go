// Package service implements the document use cases on top of the repositories,
// the blob store and the access evaluator.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"docvault/internal/access"
	"docvault/internal/metrics"
	"docvault/internal/model"
	"docvault/internal/notify"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Deps are the collaborators shared by all services. Metrics may be nil.
type Deps struct {
	Store     storage.BlobStore
	Documents repository.DocumentRepository
	Folders   repository.FolderRepository
	Shares    repository.ShareRepository
	Users     repository.UserDirectory
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

func (d Deps) notify(ctx context.Context, n model.Notification) {
	if d.Notifier != nil {
		d.Notifier.Notify(ctx, n)
	}
}

// ListResult is a page of items with the total row count.
type ListResult[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type DocumentListResult = ListResult[model.Document]

func pageQuery(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

func toListResult[T any](res *repository.PageResult[T], pq repository.PageQuery) *ListResult[T] {
	return &ListResult[T]{Items: res.Items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}
}

func isOwnerOrAdmin(u model.User, ownerID string) bool {
	return u.ID == ownerID || access.CanAdminister(u.Role)
}

// findDocument maps a missing row to ErrNotFound.
func (d Deps) findDocument(ctx context.Context, id string) (*model.Document, error) {
	doc, err := d.Documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: document not found", ErrNotFound)
		}
		return nil, err
	}
	return doc, nil
}

func (d Deps) findFolder(ctx context.Context, id string) (*model.Folder, error) {
	f, err := d.Folders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: folder not found", ErrNotFound)
		}
		return nil, err
	}
	return f, nil
}

// decide gathers the evaluator inputs for doc and records the decision.
// Owner department and grants are only loaded when the requester is not the owner.
func (d Deps) decide(ctx context.Context, requester model.User, doc *model.Document) (access.Decision, error) {
	subject := access.SubjectFromUser(requester)
	resource := access.Resource{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		Visibility: doc.Visibility,
	}
	var grants access.GrantSet

	if requester.ID != doc.OwnerID {
		owner, err := d.Users.FindByID(ctx, doc.OwnerID)
		switch {
		case err == nil:
			resource.OwnerDepartmentID = owner.DepartmentID
		case !errors.Is(err, repository.ErrNotFound):
			return access.Decision{}, fmt.Errorf("lookup owner: %w", err)
		}

		ids, err := d.Shares.GranteeIDs(ctx, doc.ID)
		if err != nil {
			return access.Decision{}, fmt.Errorf("load grants: %w", err)
		}
		grants = access.NewGrantSet(ids...)
	}

	dec := access.Decide(subject, resource, grants)
	d.Metrics.ObserveDecision(dec)
	return dec, nil
}

// authorizeRead loads the document and runs the evaluator on it.
func (d Deps) authorizeRead(ctx context.Context, requester model.User, id string) (*model.Document, error) {
	doc, err := d.findDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	dec, err := d.decide(ctx, requester, doc)
	if err != nil {
		return nil, err
	}
	if !dec.Allowed {
		return nil, fmt.Errorf("%w: you do not have access to this document", ErrAccessDenied)
	}
	return doc, nil
}

func adminActionNotice(actor model.User, ownerID, title, message string) model.Notification {
	return model.Notification{
		ReceiverID: ownerID,
		SenderID:   actor.ID,
		Title:      title,
		Message:    message,
		Type:       model.NotificationTypeAdminAction,
		Priority:   model.PriorityHigh,
	}
}
