package notify

import (
	"context"
	"database/sql"

	"docvault/internal/model"
)

// PostgresPublisher stores notifications in the notifications table read by the inbox service.
type PostgresPublisher struct {
	db *sql.DB
}

func NewPostgresPublisher(db *sql.DB) *PostgresPublisher {
	return &PostgresPublisher{db: db}
}

func (p *PostgresPublisher) Publish(ctx context.Context, n model.Notification) error {
	const q = `
		INSERT INTO notifications (id, receiver_id, sender_id, title, message, type, priority, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := p.db.ExecContext(ctx, q, n.ID, n.ReceiverID, n.SenderID, n.Title, n.Message, n.Type, n.Priority, n.SentAt)
	return err
}
