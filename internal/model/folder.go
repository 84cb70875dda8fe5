package model

import "time"

type FolderStatus string

const (
	FolderStatusPending   FolderStatus = "Pending"
	FolderStatusCompleted FolderStatus = "Completed"
)

func (s FolderStatus) Valid() bool {
	return s == FolderStatusPending || s == FolderStatusCompleted
}

// Folder groups documents of one owner. Membership lives in FolderMembership join records.
type Folder struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"owner_id"`
	Name          string       `json:"name"`
	Status        FolderStatus `json:"status"`
	DocumentCount int          `json:"document_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// FolderMembership joins a folder and a document.
type FolderMembership struct {
	FolderID   string    `json:"folder_id"`
	DocumentID string    `json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type FolderUpdate struct {
	Name   *string       `json:"name,omitempty"`
	Status *FolderStatus `json:"status,omitempty"`
}

func (u FolderUpdate) Empty() bool {
	return u.Name == nil && u.Status == nil
}
