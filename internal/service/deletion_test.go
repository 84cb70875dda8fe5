package service

import (
	"context"
	"errors"
	"testing"

	"docvault/internal/metrics"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDeletionService_DeleteDocument(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		actor      model.User
		force      bool
		strict     bool
		setupMocks func(f *fixture)
		wantErr    error
		check      func(t *testing.T, rep *DocumentDeletion)
		wantNotice bool
	}{
		{
			name:  "owner deletes unshared document",
			actor: lecturer,
			setupMocks: func(f *fixture) {
				f.docs.On("FindByID", mock.Anything, "d1").Return(testDoc(), nil)
				f.shares.On("CountByDocument", mock.Anything, "d1").Return(0, nil)
				f.store.On("Delete", mock.Anything, "b1").Return(nil)
				f.shares.On("DeleteByDocument", mock.Anything, "d1").Return(int64(0), nil)
				f.folders.On("DeleteMembershipsByDocument", mock.Anything, "d1").Return(int64(1), nil)
				f.docs.On("Delete", mock.Anything, "d1").Return(nil)
			},
			check: func(t *testing.T, rep *DocumentDeletion) {
				assert.True(t, rep.BlobDeleted)
				assert.Equal(t, int64(1), rep.FolderAssociationsRemoved)
				assert.Empty(t, rep.Warnings)
			},
		},
		{
			name:  "forced delete of shared document",
			actor: lecturer,
			force: true,
			setupMocks: func(f *fixture) {
				f.docs.On("FindByID", mock.Anything, "d1").Return(testDoc(), nil)
				f.shares.On("CountByDocument", mock.Anything, "d1").Return(2, nil)
				f.store.On("Delete", mock.Anything, "b1").Return(nil)
				f.shares.On("DeleteByDocument", mock.Anything, "d1").Return(int64(2), nil)
				f.folders.On("DeleteMembershipsByDocument", mock.Anything, "d1").Return(int64(0), nil)
				f.docs.On("Delete", mock.Anything, "d1").Return(nil)
			},
			check: func(t *testing.T, rep *DocumentDeletion) {
				assert.Equal(t, int64(2), rep.SharesRemoved)
			},
		},
		{
			name:  "blob failure is a warning",
			actor: lecturer,
			setupMocks: func(f *fixture) {
				f.docs.On("FindByID", mock.Anything, "d1").Return(testDoc(), nil)
				f.shares.On("CountByDocument", mock.Anything, "d1").Return(0, nil)
				f.store.On("Delete", mock.Anything, "b1").Return(errors.New("timeout"))
				f.shares.On("DeleteByDocument", mock.Anything, "d1").Return(int64(0), nil)
				f.folders.On("DeleteMembershipsByDocument", mock.Anything, "d1").Return(int64(0), nil)
				f.docs.On("Delete", mock.Anything, "d1").Return(nil)
			},
			check: func(t *testing.T, rep *DocumentDeletion) {
				assert.False(t, rep.BlobDeleted)
				assert.Equal(t, []string{"failed to delete file from storage: timeout"}, rep.Warnings)
			},
		},
		{
			name:  "missing blob is a warning",
			actor: lecturer,
			setupMocks: func(f *fixture) {
				f.docs.On("FindByID", mock.Anything, "d1").Return(testDoc(), nil)
				f.shares.On("CountByDocument", mock.Anything, "d1").Return(0, nil)
				f.store.On("Delete", mock.Anything, "b1").Return(storage.ErrBlobNotFound)
				f.shares.On("DeleteByDocument", mock.Anything, "d1").Return(int64(0), nil)
				f.folders.On("DeleteMembershipsByDocument", mock.Anything, "d1").Return(int64(0), nil)
				f.docs.On("Delete", mock.Anything, "d1").Return(nil)
			},
			check: func(t *testing.T, rep *DocumentDeletion) {
				assert.False(t, rep.BlobDeleted)
				assert.Len(t, rep.Warnings, 1)
			},
		},
		{
			name:   "strict storage aborts before metadata",
			actor:  lecturer,
			strict: true,
			setupMocks: func(f *fixture) {
				f.docs.On("FindByID", mock.Anything, "d1").Return(testDoc(), nil)
				f.shares.On("CountByDocument", mock.Anything, "d1").Return(0, nil)
				f.store.On("Delete", mock.Anything, "b1").Return(errors.New("timeout"))
			},
			wantErr: ErrStorage,
		},
		{
			name:   "strict storage yields to force",
			actor:  lecturer,
			strict: true,
			force:  true,
			setupMocks: func(f *fixture) {
				f.docs.On("FindByID", mock.Anything, "d1").Return(testDoc(), nil)
				f.shares.On("CountByDocument", mock.Anything, "d1").Return(0, nil)
				f.store.On("Delete", mock.Anything, "b1").Return(errors.New("timeout"))
				f.shares.On("DeleteByDocument", mock.Anything, "d1").Return(int64(0), nil)
				f.folders.On("DeleteMembershipsByDocument", mock.Anything, "d1").Return(int64(0), nil)
				f.docs.On("Delete", mock.Anything, "d1").Return(nil)
			},
			check: func(t *testing.T, rep *DocumentDeletion) {
				assert.False(t, rep.BlobDeleted)
			},
		},
		{
			name:  "admin deletes and owner is notified",
			actor: admin,
			setupMocks: func(f *fixture) {
				f.docs.On("FindByID", mock.Anything, "d1").Return(testDoc(), nil)
				f.shares.On("CountByDocument", mock.Anything, "d1").Return(0, nil)
				f.store.On("Delete", mock.Anything, "b1").Return(nil)
				f.shares.On("DeleteByDocument", mock.Anything, "d1").Return(int64(0), nil)
				f.folders.On("DeleteMembershipsByDocument", mock.Anything, "d1").Return(int64(0), nil)
				f.docs.On("Delete", mock.Anything, "d1").Return(nil)
			},
			wantNotice: true,
		},
		{
			name:  "hod cannot delete",
			actor: hod,
			setupMocks: func(f *fixture) {
				f.docs.On("FindByID", mock.Anything, "d1").Return(testDoc(), nil)
			},
			wantErr: ErrAccessDenied,
		},
		{
			name:  "missing document",
			actor: lecturer,
			setupMocks: func(f *fixture) {
				f.docs.On("FindByID", mock.Anything, "d1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name:  "share removal failure stops the cascade",
			actor: lecturer,
			force: true,
			setupMocks: func(f *fixture) {
				f.docs.On("FindByID", mock.Anything, "d1").Return(testDoc(), nil)
				f.shares.On("CountByDocument", mock.Anything, "d1").Return(1, nil)
				f.store.On("Delete", mock.Anything, "b1").Return(nil)
				f.shares.On("DeleteByDocument", mock.Anything, "d1").Return(int64(0), errors.New("deadlock"))
			},
			wantErr: errors.New("delete shares: deadlock"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setupMocks(f)
			svc := NewDeletionService(f.deps(), DeletionPolicy{StrictStorage: tt.strict})

			rep, err := svc.DeleteDocument(ctx, tt.actor, "d1", tt.force)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrStorage) || errors.Is(tt.wantErr, ErrAccessDenied) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				assert.Nil(t, rep)
				f.docs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "d1", rep.DocumentID)
				if tt.check != nil {
					tt.check(t, rep)
				}
			}

			sent := f.notifier.all()
			if tt.wantNotice {
				require.Len(t, sent, 1)
				assert.Equal(t, lecturer.ID, sent[0].ReceiverID)
				assert.Equal(t, model.NotificationTypeAdminAction, sent[0].Type)
				assert.Equal(t, model.PriorityHigh, sent[0].Priority)
			} else {
				assert.Empty(t, sent)
			}
			f.assertExpectations(t)
		})
	}
}

func TestDeletionService_DeleteDocumentSharedConflict(t *testing.T) {
	f := newFixture()
	f.docs.On("FindByID", mock.Anything, "d1").Return(testDoc(), nil)
	f.shares.On("CountByDocument", mock.Anything, "d1").Return(3, nil)

	rep, err := NewDeletionService(f.deps(), DeletionPolicy{}).DeleteDocument(context.Background(), lecturer, "d1", false)

	assert.Nil(t, rep)
	require.ErrorIs(t, err, ErrConflict)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, DocumentConflict{ShareCount: 3, Document: model.DocumentRef{ID: "d1", Title: "Notes"}}, conflict.Details)

	f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.shares.AssertNotCalled(t, "DeleteByDocument", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func folderDocs(n int) []model.Document {
	titles := []string{"Week 1", "Week 2", "Week 3", "Week 4"}
	docs := make([]model.Document, n)
	for i := range docs {
		docs[i] = model.Document{ID: "d" + string(rune('1'+i)), OwnerID: lecturer.ID, Title: titles[i], BlobID: "b" + string(rune('1'+i))}
	}
	return docs
}

func expectDocumentCascade(f *fixture, doc model.Document, blobErr error) {
	f.store.On("Delete", mock.Anything, doc.BlobID).Return(blobErr)
	f.shares.On("DeleteByDocument", mock.Anything, doc.ID).Return(int64(1), nil)
	f.folders.On("DeleteMembershipsByDocument", mock.Anything, doc.ID).Return(int64(1), nil)
	f.docs.On("Delete", mock.Anything, doc.ID).Return(nil)
}

func TestDeletionService_DeleteFolderConflict(t *testing.T) {
	f := newFixture()
	docs := folderDocs(2)
	f.folders.On("FindByID", mock.Anything, "f1").Return(testFolder(), nil)
	f.folders.On("AllDocuments", mock.Anything, "f1").Return(docs, nil)

	rep, err := NewDeletionService(f.deps(), DeletionPolicy{}).DeleteFolder(context.Background(), lecturer, "f1", false, false)

	assert.Nil(t, rep)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, FolderConflict{
		Folder:    FolderRef{ID: "f1", Name: "Semester 1", DocumentCount: 2},
		Documents: []model.DocumentRef{{ID: "d1", Title: "Week 1"}, {ID: "d2", Title: "Week 2"}},
	}, conflict.Details)

	f.folders.AssertNotCalled(t, "DeleteMembershipsByFolder", mock.Anything, mock.Anything)
	f.folders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestDeletionService_DeleteFolder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		actor           model.User
		deleteDocuments bool
		force           bool
		setupMocks      func(f *fixture)
		wantErr         error
		want            FolderDeletion
		wantNotices     int
	}{
		{
			name:  "empty folder",
			actor: lecturer,
			setupMocks: func(f *fixture) {
				f.folders.On("FindByID", mock.Anything, "f1").Return(testFolder(), nil)
				f.folders.On("AllDocuments", mock.Anything, "f1").Return([]model.Document{}, nil)
				f.folders.On("DeleteMembershipsByFolder", mock.Anything, "f1").Return(int64(0), nil)
				f.folders.On("Delete", mock.Anything, "f1").Return(nil)
			},
			want: FolderDeletion{FolderID: "f1", Name: "Semester 1", Errors: []ItemError{}},
		},
		{
			name:  "force keeps documents",
			actor: lecturer,
			force: true,
			setupMocks: func(f *fixture) {
				f.folders.On("FindByID", mock.Anything, "f1").Return(testFolder(), nil)
				f.folders.On("AllDocuments", mock.Anything, "f1").Return(folderDocs(3), nil)
				f.folders.On("DeleteMembershipsByFolder", mock.Anything, "f1").Return(int64(3), nil)
				f.folders.On("Delete", mock.Anything, "f1").Return(nil)
			},
			want: FolderDeletion{FolderID: "f1", Name: "Semester 1", FolderAssociationsRemoved: 3, Errors: []ItemError{}},
		},
		{
			name:            "cascade with one blob failure",
			actor:           lecturer,
			deleteDocuments: true,
			setupMocks: func(f *fixture) {
				docs := folderDocs(3)
				f.folders.On("FindByID", mock.Anything, "f1").Return(testFolder(), nil)
				f.folders.On("AllDocuments", mock.Anything, "f1").Return(docs, nil)
				expectDocumentCascade(f, docs[0], nil)
				expectDocumentCascade(f, docs[1], errors.New("bucket offline"))
				expectDocumentCascade(f, docs[2], nil)
				f.folders.On("DeleteMembershipsByFolder", mock.Anything, "f1").Return(int64(0), nil)
				f.folders.On("Delete", mock.Anything, "f1").Return(nil)
			},
			want: FolderDeletion{
				FolderID:           "f1",
				Name:               "Semester 1",
				DocumentsProcessed: 3,
				DocumentsDeleted:   2,
				Errors: []ItemError{{
					DocumentID: "d2",
					Title:      "Week 2",
					Error:      "failed to delete file from storage: bucket offline",
				}},
			},
		},
		{
			name:            "metadata failure is recorded and the loop continues",
			actor:           lecturer,
			deleteDocuments: true,
			setupMocks: func(f *fixture) {
				docs := folderDocs(2)
				f.folders.On("FindByID", mock.Anything, "f1").Return(testFolder(), nil)
				f.folders.On("AllDocuments", mock.Anything, "f1").Return(docs, nil)
				f.store.On("Delete", mock.Anything, "b1").Return(nil)
				f.shares.On("DeleteByDocument", mock.Anything, "d1").Return(int64(0), errors.New("lock timeout"))
				expectDocumentCascade(f, docs[1], nil)
				f.folders.On("DeleteMembershipsByFolder", mock.Anything, "f1").Return(int64(1), nil)
				f.folders.On("Delete", mock.Anything, "f1").Return(nil)
			},
			want: FolderDeletion{
				FolderID:                  "f1",
				Name:                      "Semester 1",
				DocumentsProcessed:        2,
				DocumentsDeleted:          1,
				FolderAssociationsRemoved: 1,
				Errors:                    []ItemError{{DocumentID: "d1", Title: "Week 1", Error: "delete shares: lock timeout"}},
			},
		},
		{
			name:            "admin cascade notifies per document and for the folder",
			actor:           admin,
			deleteDocuments: true,
			setupMocks: func(f *fixture) {
				docs := folderDocs(2)
				f.folders.On("FindByID", mock.Anything, "f1").Return(testFolder(), nil)
				f.folders.On("AllDocuments", mock.Anything, "f1").Return(docs, nil)
				expectDocumentCascade(f, docs[0], nil)
				expectDocumentCascade(f, docs[1], nil)
				f.folders.On("DeleteMembershipsByFolder", mock.Anything, "f1").Return(int64(0), nil)
				f.folders.On("Delete", mock.Anything, "f1").Return(nil)
			},
			want: FolderDeletion{
				FolderID:           "f1",
				Name:               "Semester 1",
				DocumentsProcessed: 2,
				DocumentsDeleted:   2,
				Errors:             []ItemError{},
			},
			wantNotices: 3,
		},
		{
			name:            "documents of other owners are detached, not deleted",
			actor:           lecturer,
			deleteDocuments: true,
			setupMocks: func(f *fixture) {
				docs := folderDocs(2)
				docs[1].OwnerID = student.ID
				f.folders.On("FindByID", mock.Anything, "f1").Return(testFolder(), nil)
				f.folders.On("AllDocuments", mock.Anything, "f1").Return(docs, nil)
				expectDocumentCascade(f, docs[0], nil)
				f.folders.On("DeleteMembershipsByFolder", mock.Anything, "f1").Return(int64(1), nil)
				f.folders.On("Delete", mock.Anything, "f1").Return(nil)
			},
			want: FolderDeletion{
				FolderID:                  "f1",
				Name:                      "Semester 1",
				DocumentsProcessed:        2,
				DocumentsDeleted:          1,
				FolderAssociationsRemoved: 1,
				Errors:                    []ItemError{{DocumentID: "d2", Title: "Week 2", Error: "access denied"}},
			},
		},
		{
			name:  "not the owner",
			actor: student,
			setupMocks: func(f *fixture) {
				f.folders.On("FindByID", mock.Anything, "f1").Return(testFolder(), nil)
			},
			wantErr: ErrAccessDenied,
		},
		{
			name:  "missing folder",
			actor: lecturer,
			setupMocks: func(f *fixture) {
				f.folders.On("FindByID", mock.Anything, "f1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setupMocks(f)
			svc := NewDeletionService(f.deps(), DeletionPolicy{})

			rep, err := svc.DeleteFolder(ctx, tt.actor, "f1", tt.deleteDocuments, tt.force)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, rep)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, *rep)
			}
			assert.Len(t, f.notifier.all(), tt.wantNotices)
			f.assertExpectations(t)
		})
	}
}

func TestDeletionService_DeleteFolderKeepsForeignDocument(t *testing.T) {
	f := newFixture()
	foreign := model.Document{ID: "d9", OwnerID: student.ID, Title: "Essay", BlobID: "b9"}
	f.folders.On("FindByID", mock.Anything, "f1").Return(testFolder(), nil)
	f.folders.On("AllDocuments", mock.Anything, "f1").Return([]model.Document{foreign}, nil)
	f.folders.On("DeleteMembershipsByFolder", mock.Anything, "f1").Return(int64(1), nil)
	f.folders.On("Delete", mock.Anything, "f1").Return(nil)

	rep, err := NewDeletionService(f.deps(), DeletionPolicy{}).DeleteFolder(context.Background(), lecturer, "f1", true, false)

	require.NoError(t, err)
	assert.Equal(t, 0, rep.DocumentsDeleted)
	assert.Equal(t, int64(1), rep.FolderAssociationsRemoved)
	f.store.AssertNotCalled(t, "Delete", mock.Anything, "b9")
	f.shares.AssertNotCalled(t, "DeleteByDocument", mock.Anything, "d9")
	f.docs.AssertNotCalled(t, "Delete", mock.Anything, "d9")
	assert.Empty(t, f.notifier.all())
	f.assertExpectations(t)
}

func TestDeletionService_CountsCascadeErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	f := newFixture()
	d := f.deps()
	d.Metrics = m
	docs := folderDocs(1)
	f.folders.On("FindByID", mock.Anything, "f1").Return(testFolder(), nil)
	f.folders.On("AllDocuments", mock.Anything, "f1").Return(docs, nil)
	expectDocumentCascade(f, docs[0], errors.New("bucket offline"))
	f.folders.On("DeleteMembershipsByFolder", mock.Anything, "f1").Return(int64(0), nil)
	f.folders.On("Delete", mock.Anything, "f1").Return(nil)

	rep, err := NewDeletionService(d, DeletionPolicy{}).DeleteFolder(context.Background(), lecturer, "f1", true, false)

	require.NoError(t, err)
	assert.Equal(t, 0, rep.DocumentsDeleted)
	n, err := testutil.GatherAndCount(reg, "docvault_cascade_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
