package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

var tracer = otel.Tracer("docvault/internal/service")

// DeletionPolicy tunes the cascade. With StrictStorage a failed blob delete
// aborts a non-forced document delete before any metadata changes.
type DeletionPolicy struct {
	StrictStorage bool
}

// DocumentDeletion reports what a document delete removed.
type DocumentDeletion struct {
	DocumentID                string   `json:"document_id"`
	Title                     string   `json:"title"`
	SharesRemoved             int64    `json:"shares_removed"`
	FolderAssociationsRemoved int64    `json:"folder_associations_removed"`
	BlobDeleted               bool     `json:"blob_deleted"`
	Warnings                  []string `json:"warnings"`

	blobErr error
}

// ItemError is one document that a folder cascade failed to remove cleanly.
type ItemError struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Error      string `json:"error"`
}

// FolderDeletion reports the outcome of a folder delete. Partial failures are listed in Errors.
type FolderDeletion struct {
	FolderID                  string      `json:"folder_id"`
	Name                      string      `json:"name"`
	DocumentsProcessed        int         `json:"documents_processed"`
	DocumentsDeleted          int         `json:"documents_deleted"`
	FolderAssociationsRemoved int64       `json:"folder_associations_removed"`
	Errors                    []ItemError `json:"errors"`
}

// DocumentConflict is returned in a ConflictError when a shared document is deleted without force.
type DocumentConflict struct {
	ShareCount int               `json:"share_count"`
	Document   model.DocumentRef `json:"document"`
}

type FolderRef struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
}

// FolderConflict is returned in a ConflictError when a non-empty folder is deleted without flags.
type FolderConflict struct {
	Folder    FolderRef           `json:"folder"`
	Documents []model.DocumentRef `json:"documents"`
}

// DeletionService removes documents and folders together with everything that references them.
// Loops run sequentially without a surrounding transaction.
type DeletionService interface {
	DeleteDocument(ctx context.Context, actor model.User, id string, force bool) (*DocumentDeletion, error)
	DeleteFolder(ctx context.Context, actor model.User, id string, deleteDocuments, force bool) (*FolderDeletion, error)
}

type deletionService struct {
	Deps
	policy DeletionPolicy
}

func NewDeletionService(d Deps, policy DeletionPolicy) DeletionService {
	return &deletionService{Deps: d, policy: policy}
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (s *deletionService) DeleteDocument(ctx context.Context, actor model.User, id string, force bool) (*DocumentDeletion, error) {
	ctx, span := tracer.Start(ctx, "DeletionService.DeleteDocument", trace.WithAttributes(
		attribute.String("document.id", id),
		attribute.Bool("delete.force", force),
	))
	defer span.End()

	doc, err := s.findDocument(ctx, id)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}
	if !isOwnerOrAdmin(actor, doc.OwnerID) {
		err := fmt.Errorf("%w: only the owner can delete this document", ErrAccessDenied)
		failSpan(span, err)
		return nil, err
	}

	shareCount, err := s.Shares.CountByDocument(ctx, doc.ID)
	if err != nil {
		failSpan(span, err)
		return nil, fmt.Errorf("count shares: %w", err)
	}
	if shareCount > 0 && !force {
		return nil, &ConflictError{
			Message: fmt.Sprintf("document is shared with %d user(s); use force=true to delete anyway", shareCount),
			Details: DocumentConflict{
				ShareCount: shareCount,
				Document:   model.DocumentRef{ID: doc.ID, Title: doc.Title},
			},
		}
	}

	rep, err := s.cascadeDocument(ctx, doc, s.policy.StrictStorage && !force)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("delete.shares_removed", rep.SharesRemoved),
		attribute.Bool("delete.blob_deleted", rep.BlobDeleted),
	)

	if actor.ID != doc.OwnerID {
		s.notify(ctx, adminActionNotice(actor, doc.OwnerID,
			"Document deleted by administrator",
			fmt.Sprintf("%s deleted your document %q", actor.Name, doc.Title),
		))
	}
	s.logger().Info("document_deleted",
		zap.String("document_id", doc.ID),
		zap.String("actor_id", actor.ID),
		zap.Int64("shares_removed", rep.SharesRemoved),
		zap.Bool("blob_deleted", rep.BlobDeleted),
	)
	return rep, nil
}

// cascadeDocument removes the blob, the grants, the memberships and finally the record.
// A blob failure is kept in the report unless strict is set, in which case nothing is mutated.
func (s *deletionService) cascadeDocument(ctx context.Context, doc *model.Document, strict bool) (*DocumentDeletion, error) {
	rep := &DocumentDeletion{DocumentID: doc.ID, Title: doc.Title, Warnings: []string{}}
	log := s.logger().With(zap.String("document_id", doc.ID), zap.String("blob_id", doc.BlobID))

	switch err := s.Store.Delete(ctx, doc.BlobID); {
	case err == nil:
		rep.BlobDeleted = true
	case errors.Is(err, storage.ErrBlobNotFound):
		rep.Warnings = append(rep.Warnings, "file was already missing from storage")
	default:
		s.Metrics.CascadeError("blob")
		if strict {
			return nil, fmt.Errorf("%w: delete blob: %v", ErrStorage, err)
		}
		log.Warn("document_blob_delete_failed", zap.Error(err))
		rep.blobErr = err
		rep.Warnings = append(rep.Warnings, "failed to delete file from storage: "+err.Error())
	}

	n, err := s.Shares.DeleteByDocument(ctx, doc.ID)
	if err != nil {
		s.Metrics.CascadeError("shares")
		return nil, fmt.Errorf("delete shares: %w", err)
	}
	rep.SharesRemoved = n

	n, err = s.Folders.DeleteMembershipsByDocument(ctx, doc.ID)
	if err != nil {
		s.Metrics.CascadeError("memberships")
		return nil, fmt.Errorf("delete folder associations: %w", err)
	}
	rep.FolderAssociationsRemoved = n

	if err := s.Documents.Delete(ctx, doc.ID); err != nil {
		s.Metrics.CascadeError("record")
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: document not found", ErrNotFound)
		}
		return nil, fmt.Errorf("delete document: %w", err)
	}
	return rep, nil
}

func (s *deletionService) DeleteFolder(ctx context.Context, actor model.User, id string, deleteDocuments, force bool) (*FolderDeletion, error) {
	ctx, span := tracer.Start(ctx, "DeletionService.DeleteFolder", trace.WithAttributes(
		attribute.String("folder.id", id),
		attribute.Bool("delete.documents", deleteDocuments),
		attribute.Bool("delete.force", force),
	))
	defer span.End()

	folder, err := s.findFolder(ctx, id)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}
	if !isOwnerOrAdmin(actor, folder.OwnerID) {
		err := fmt.Errorf("%w: only the owner can delete this folder", ErrAccessDenied)
		failSpan(span, err)
		return nil, err
	}

	docs, err := s.Folders.AllDocuments(ctx, folder.ID)
	if err != nil {
		failSpan(span, err)
		return nil, fmt.Errorf("load folder documents: %w", err)
	}
	if len(docs) > 0 && !deleteDocuments && !force {
		refs := make([]model.DocumentRef, 0, len(docs))
		for _, d := range docs {
			refs = append(refs, model.DocumentRef{ID: d.ID, Title: d.Title})
		}
		return nil, &ConflictError{
			Message: fmt.Sprintf("folder contains %d document(s); use delete_documents=true or force=true", len(docs)),
			Details: FolderConflict{
				Folder:    FolderRef{ID: folder.ID, Name: folder.Name, DocumentCount: len(docs)},
				Documents: refs,
			},
		}
	}

	rep := &FolderDeletion{FolderID: folder.ID, Name: folder.Name, Errors: []ItemError{}}
	if deleteDocuments {
		for i := range docs {
			s.deleteFolderDocument(ctx, actor, &docs[i], rep)
		}
	}

	// Leftover memberships belong to documents that stay, either because the
	// folder was forced or because their cascade failed.
	n, err := s.Folders.DeleteMembershipsByFolder(ctx, folder.ID)
	if err != nil {
		failSpan(span, err)
		return nil, fmt.Errorf("delete folder associations: %w", err)
	}
	rep.FolderAssociationsRemoved = n

	if err := s.Folders.Delete(ctx, folder.ID); err != nil {
		failSpan(span, err)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: folder not found", ErrNotFound)
		}
		return nil, fmt.Errorf("delete folder: %w", err)
	}

	span.SetAttributes(
		attribute.Int("delete.documents_processed", rep.DocumentsProcessed),
		attribute.Int("delete.documents_deleted", rep.DocumentsDeleted),
		attribute.Int("delete.errors", len(rep.Errors)),
	)
	if actor.ID != folder.OwnerID {
		s.notify(ctx, adminActionNotice(actor, folder.OwnerID,
			"Folder deleted by administrator",
			fmt.Sprintf("%s deleted your folder %q", actor.Name, folder.Name),
		))
	}
	s.logger().Info("folder_deleted",
		zap.String("folder_id", folder.ID),
		zap.String("actor_id", actor.ID),
		zap.Int("documents_processed", rep.DocumentsProcessed),
		zap.Int("documents_deleted", rep.DocumentsDeleted),
		zap.Int("errors", len(rep.Errors)),
	)
	return rep, nil
}

func (s *deletionService) deleteFolderDocument(ctx context.Context, actor model.User, doc *model.Document, rep *FolderDeletion) {
	rep.DocumentsProcessed++

	// A foreign document placed here by an administrator stays; the membership
	// sweep detaches it.
	if !isOwnerOrAdmin(actor, doc.OwnerID) {
		s.logger().Warn("folder_document_delete_denied",
			zap.String("document_id", doc.ID),
			zap.String("owner_id", doc.OwnerID),
			zap.String("actor_id", actor.ID),
		)
		rep.Errors = append(rep.Errors, ItemError{DocumentID: doc.ID, Title: doc.Title, Error: "access denied"})
		return
	}

	docRep, err := s.cascadeDocument(ctx, doc, false)
	if err != nil {
		s.logger().Warn("folder_document_delete_failed", zap.String("document_id", doc.ID), zap.Error(err))
		rep.Errors = append(rep.Errors, ItemError{DocumentID: doc.ID, Title: doc.Title, Error: err.Error()})
		return
	}

	if docRep.blobErr != nil {
		rep.Errors = append(rep.Errors, ItemError{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Error:      "failed to delete file from storage: " + docRep.blobErr.Error(),
		})
	} else {
		rep.DocumentsDeleted++
	}

	if actor.ID != doc.OwnerID {
		s.notify(ctx, adminActionNotice(actor, doc.OwnerID,
			"Document deleted by administrator",
			fmt.Sprintf("%s deleted your document %q", actor.Name, doc.Title),
		))
	}
}
