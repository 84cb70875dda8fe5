// Package notify delivers notifications to users as a fire-and-forget side effect.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docvault/internal/model"
)

// Publisher delivers one notification to a backend.
type Publisher interface {
	Publish(ctx context.Context, n model.Notification) error
}

// Notifier is what services depend on. Notify never blocks on delivery and never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// Dispatcher publishes each notification on its own goroutine, bounded by a timeout.
// Wait drains in-flight publishes during shutdown.
type Dispatcher struct {
	pub     Publisher
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

var _ Notifier = (*Dispatcher)(nil)

func NewDispatcher(pub Publisher, log *zap.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{pub: pub, log: log, timeout: timeout, now: time.Now}
}

func (d *Dispatcher) Notify(ctx context.Context, n model.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.SentAt.IsZero() {
		n.SentAt = d.now().UTC()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// The request may finish before the publish does.
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.pub.Publish(pctx, n); err != nil {
			d.log.Warn("notification_publish_failed",
				zap.String("notification_id", n.ID),
				zap.String("receiver_id", n.ReceiverID),
				zap.String("type", n.Type),
				zap.Error(err),
			)
			return
		}
		d.log.Debug("notification_published",
			zap.String("notification_id", n.ID),
			zap.String("receiver_id", n.ReceiverID),
			zap.String("type", n.Type),
		)
	}()
}

// Wait blocks until every in-flight publish finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
