package model

import "time"

// ShareGrant is an explicit read permission on one document, given by GrantorID to GranteeID.
type ShareGrant struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	GrantorID  string    `json:"grantor_id"`
	GranteeID  string    `json:"grantee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// SharedDocument is a grant joined with the document it points at.
type SharedDocument struct {
	Grant    ShareGrant `json:"grant"`
	Document Document   `json:"document"`
}
