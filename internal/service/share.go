package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docvault/internal/access"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// Per-grantee outcomes reported by Share.
const (
	ShareErrSelf          = "cannot share with self"
	ShareErrUserNotFound  = "user not found"
	ShareErrAlreadyShared = "already shared"
	ShareErrFailed        = "failed to share"
)

// ShareError explains why one grantee did not receive a grant.
type ShareError struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// ShareResult lists the grants created by one Share call and the grantees that were skipped.
type ShareResult struct {
	Granted []model.ShareGrant `json:"granted"`
	Errors  []ShareError       `json:"errors"`
}

type SharedListResult = ListResult[model.SharedDocument]

type ShareService interface {
	// Share grants read access to each grantee independently; one bad grantee never aborts the rest.
	Share(ctx context.Context, requester model.User, documentID string, granteeIDs []string) (*ShareResult, error)
	// Revoke removes a grant. Only its grantor may do this.
	Revoke(ctx context.Context, requester model.User, grantID string) error
	// ListByDocument returns every grant to the owner and only their own grants to anyone else.
	ListByDocument(ctx context.Context, requester model.User, documentID string) ([]model.ShareGrant, error)
	ListSharedWithMe(ctx context.Context, requester model.User, limit, offset int) (*SharedListResult, error)
	ListSharedByMe(ctx context.Context, requester model.User, limit, offset int) (*SharedListResult, error)
}

type shareService struct {
	Deps
}

func NewShareService(d Deps) ShareService {
	return &shareService{Deps: d}
}

func (s *shareService) Share(ctx context.Context, requester model.User, documentID string, granteeIDs []string) (*ShareResult, error) {
	if len(granteeIDs) == 0 {
		return nil, validationf("user_ids must not be empty")
	}

	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if requester.ID != doc.OwnerID {
		if !access.CanDelegate(requester.Role) {
			return nil, fmt.Errorf("%w: only the owner can share this document", ErrAccessDenied)
		}
		dec, err := s.decide(ctx, requester, doc)
		if err != nil {
			return nil, err
		}
		if !dec.Allowed {
			return nil, fmt.Errorf("%w: you do not have access to this document", ErrAccessDenied)
		}
	}

	res := &ShareResult{Granted: []model.ShareGrant{}, Errors: []ShareError{}}
	for _, raw := range granteeIDs {
		granteeID := strings.TrimSpace(raw)
		grant, reason := s.grantOne(ctx, requester, doc, granteeID)
		if reason != "" {
			res.Errors = append(res.Errors, ShareError{UserID: granteeID, Error: reason})
			continue
		}
		res.Granted = append(res.Granted, *grant)
		s.notify(ctx, model.Notification{
			ReceiverID: granteeID,
			SenderID:   requester.ID,
			Title:      "Document shared with you",
			Message:    fmt.Sprintf("%s shared %q with you", requester.Name, doc.Title),
			Type:       model.NotificationTypeDocumentShare,
			Priority:   model.PriorityMedium,
		})
	}
	return res, nil
}

// grantOne returns either the created grant or the reason none was created.
func (s *shareService) grantOne(ctx context.Context, requester model.User, doc *model.Document, granteeID string) (*model.ShareGrant, string) {
	if granteeID == requester.ID {
		return nil, ShareErrSelf
	}
	if granteeID == "" {
		return nil, ShareErrUserNotFound
	}
	if _, err := s.Users.FindByID(ctx, granteeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ShareErrUserNotFound
		}
		s.logger().Error("share_grantee_lookup_failed", zap.String("grantee_id", granteeID), zap.Error(err))
		return nil, ShareErrFailed
	}

	grant, created, err := s.Shares.Create(ctx, &model.ShareGrant{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		GrantorID:  requester.ID,
		GranteeID:  granteeID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		s.logger().Error("share_create_failed",
			zap.String("document_id", doc.ID),
			zap.String("grantee_id", granteeID),
			zap.Error(err),
		)
		return nil, ShareErrFailed
	}
	if !created {
		return nil, ShareErrAlreadyShared
	}
	return grant, ""
}

func (s *shareService) Revoke(ctx context.Context, requester model.User, grantID string) error {
	grant, err := s.Shares.FindByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: share not found", ErrNotFound)
		}
		return err
	}
	if grant.GrantorID != requester.ID {
		return fmt.Errorf("%w: only the user who shared can revoke", ErrAccessDenied)
	}
	if err := s.Shares.Delete(ctx, grantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: share not found", ErrNotFound)
		}
		return err
	}

	title := grant.DocumentID
	if doc, err := s.Documents.FindByID(ctx, grant.DocumentID); err == nil {
		title = doc.Title
	}
	s.notify(ctx, model.Notification{
		ReceiverID: grant.GranteeID,
		SenderID:   requester.ID,
		Title:      "Document access revoked",
		Message:    fmt.Sprintf("%s revoked your access to %q", requester.Name, title),
		Type:       model.NotificationTypeDocumentShare,
		Priority:   model.PriorityMedium,
	})
	return nil
}

func (s *shareService) ListByDocument(ctx context.Context, requester model.User, documentID string) ([]model.ShareGrant, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	grantor := requester.ID
	if requester.ID == doc.OwnerID {
		grantor = ""
	}
	return s.Shares.ListByDocument(ctx, documentID, grantor)
}

func (s *shareService) ListSharedWithMe(ctx context.Context, requester model.User, limit, offset int) (*SharedListResult, error) {
	pq := pageQuery(limit, offset)
	res, err := s.Shares.ListByGrantee(ctx, requester.ID, pq)
	if err != nil {
		return nil, err
	}
	return toListResult(res, pq), nil
}

func (s *shareService) ListSharedByMe(ctx context.Context, requester model.User, limit, offset int) (*SharedListResult, error) {
	pq := pageQuery(limit, offset)
	res, err := s.Shares.ListByGrantor(ctx, requester.ID, pq)
	if err != nil {
		return nil, err
	}
	return toListResult(res, pq), nil
}
