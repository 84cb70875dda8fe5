package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	repoMocks "docvault/internal/repository/mocks"
	storeMocks "docvault/internal/storage/mocks"

	"github.com/stretchr/testify/mock"
)

var (
	lecturer = model.User{ID: "u1", Name: "Lena", Role: model.RoleLecturer, DepartmentID: "cs"}
	student  = model.User{ID: "s1", Name: "Sam", Role: model.RoleStudent, DepartmentID: "cs"}
	hod      = model.User{ID: "h1", Name: "Hana", Role: model.RoleHoD, DepartmentID: "cs"}
	otherHoD = model.User{ID: "h2", Name: "Hugo", Role: model.RoleHoD, DepartmentID: "math"}
	admin    = model.User{ID: "a1", Name: "Ada", Role: model.RoleAdmin}
)

func testDoc() *model.Document {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.Document{
		ID:           "d1",
		OwnerID:      lecturer.ID,
		Title:        "Notes",
		BlobID:       "b1",
		OriginalName: "notes.pdf",
		Visibility:   model.VisibilityPrivate,
		ContentType:  "application/pdf",
		Size:         5,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) all() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Notification(nil), n.sent...)
}

type fixture struct {
	store    *storeMocks.MockBlobStore
	docs     *repoMocks.MockDocumentRepository
	folders  *repoMocks.MockFolderRepository
	shares   *repoMocks.MockShareRepository
	users    *repoMocks.MockUserDirectory
	notifier *recordingNotifier
}

func newFixture() *fixture {
	return &fixture{
		store:    new(storeMocks.MockBlobStore),
		docs:     new(repoMocks.MockDocumentRepository),
		folders:  new(repoMocks.MockFolderRepository),
		shares:   new(repoMocks.MockShareRepository),
		users:    new(repoMocks.MockUserDirectory),
		notifier: &recordingNotifier{},
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Store:     f.store,
		Documents: f.docs,
		Folders:   f.folders,
		Shares:    f.shares,
		Users:     f.users,
		Notifier:  f.notifier,
	}
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.store.AssertExpectations(t)
	f.docs.AssertExpectations(t)
	f.folders.AssertExpectations(t)
	f.shares.AssertExpectations(t)
	f.users.AssertExpectations(t)
}

// expectNonOwnerLookup primes the owner and grant lookups the evaluator needs for a non-owner.
func (f *fixture) expectNonOwnerLookup(doc *model.Document, owner *model.User, grantees ...string) {
	if owner == nil {
		f.users.On("FindByID", mock.Anything, doc.OwnerID).Return(nil, repository.ErrNotFound).Once()
	} else {
		f.users.On("FindByID", mock.Anything, doc.OwnerID).Return(owner, nil).Once()
	}
	f.shares.On("GranteeIDs", mock.Anything, doc.ID).Return(grantees, nil).Once()
}
