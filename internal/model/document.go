package model

import "time"

// Visibility is the default-access level of a document.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityShared  Visibility = "shared"
	VisibilityPublic  Visibility = "public"
)

// Valid reports whether v is one of the known visibility levels.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityShared, VisibilityPublic:
		return true
	}
	return false
}

// Document represents a stored file in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// BlobID points at the chunked content; it is a non-owning reference and may dangle
// after a best-effort delete.
type Document struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Title        string     `json:"title"`
	BlobID       string     `json:"blob_id"`
	OriginalName string     `json:"original_name"`
	Visibility   Visibility `json:"visibility"`
	ContentType  string     `json:"content_type"`
	Size         int64      `json:"size"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DocumentRef is the short form of a document used in conflict and deletion reports.
type DocumentRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// DocumentUpdate carries the mutable fields of a document. Nil means unchanged.
type DocumentUpdate struct {
	Title      *string     `json:"title,omitempty"`
	Visibility *Visibility `json:"visibility,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u DocumentUpdate) Empty() bool {
	return u.Title == nil && u.Visibility == nil
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Search      string
	ContentType string
	Visibility  Visibility
}
