package model

import "time"

const (
	NotificationTypeDocumentShare = "document_share"
	NotificationTypeAdminAction   = "admin_action"

	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Notification is emitted as a side effect and never read back by this service.
type Notification struct {
	ID         string    `json:"id"`
	ReceiverID string    `json:"receiver_id"`
	SenderID   string    `json:"sender_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	Priority   string    `json:"priority"`
	SentAt     time.Time `json:"sent_at"`
}
