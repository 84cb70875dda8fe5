package notify

import (
	"context"

	"go.uber.org/zap"

	"docvault/internal/model"
)

// LogPublisher only logs notifications. Used in development and when no backend is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (l *LogPublisher) Publish(_ context.Context, n model.Notification) error {
	l.log.Info("notification",
		zap.String("notification_id", n.ID),
		zap.String("receiver_id", n.ReceiverID),
		zap.String("sender_id", n.SenderID),
		zap.String("type", n.Type),
		zap.String("priority", n.Priority),
		zap.String("title", n.Title),
	)
	return nil
}
