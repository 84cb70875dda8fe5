package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/logger"
	"docvault/internal/model"
)

type recordingPublisher struct {
	mu    sync.Mutex
	got   []model.Notification
	err   error
	delay time.Duration
}

func (p *recordingPublisher) Publish(ctx context.Context, n model.Notification) error {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, n)
	return p.err
}

func TestDispatcher_Notify(t *testing.T) {
	pub := &recordingPublisher{}
	var buf bytes.Buffer
	d := NewDispatcher(pub, logger.NewJSON(&buf, time.UTC), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 5; i++ {
		d.Notify(ctx, model.Notification{ReceiverID: "u1", Type: model.NotificationTypeDocumentShare})
	}
	// Cancelling the request context must not abort in-flight publishes.
	cancel()

	require.NoError(t, d.Wait(context.Background()))
	require.Len(t, pub.got, 5)
	for _, n := range pub.got {
		assert.NotEmpty(t, n.ID)
		assert.False(t, n.SentAt.IsZero())
	}
}

func TestDispatcher_PublishFailureIsLogged(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	var buf bytes.Buffer
	d := NewDispatcher(pub, logger.NewJSON(&buf, time.UTC), time.Second)

	d.Notify(context.Background(), model.Notification{ID: "n1", ReceiverID: "u1"})
	require.NoError(t, d.Wait(context.Background()))

	assert.Contains(t, buf.String(), "notification_publish_failed")
	assert.Contains(t, buf.String(), "broker down")
}

func TestDispatcher_Timeout(t *testing.T) {
	pub := &recordingPublisher{delay: time.Second}
	var buf bytes.Buffer
	d := NewDispatcher(pub, logger.NewJSON(&buf, time.UTC), 20*time.Millisecond)

	d.Notify(context.Background(), model.Notification{ID: "n1", ReceiverID: "u1"})
	require.NoError(t, d.Wait(context.Background()))
	assert.Contains(t, buf.String(), "context deadline exceeded")
}

func TestDispatcher_WaitHonoursContext(t *testing.T) {
	pub := &recordingPublisher{delay: 500 * time.Millisecond}
	d := NewDispatcher(pub, logger.NewJSON(&bytes.Buffer{}, time.UTC), time.Second)

	d.Notify(context.Background(), model.Notification{ReceiverID: "u1"})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)

	require.NoError(t, d.Wait(context.Background()))
}

func TestPostgresPublisher(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	n := model.Notification{
		ID: "n1", ReceiverID: "u1", SenderID: "a1", Title: "Document deleted", Message: "An administrator deleted \"Notes\"",
		Type: model.NotificationTypeAdminAction, Priority: model.PriorityHigh, SentAt: now,
	}
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs("n1", "u1", "a1", n.Title, n.Message, "admin_action", "high", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresPublisher(db).Publish(context.Background(), n))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKafkaPublisher(t *testing.T) {
	t.Run("sends json keyed by receiver", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, nil)
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			key, _ := msg.Key.Encode()
			if string(key) != "u2" {
				return errors.New("unexpected key " + string(key))
			}
			val, _ := msg.Value.Encode()
			var n model.Notification
			if err := json.Unmarshal(val, &n); err != nil {
				return err
			}
			if n.Type != model.NotificationTypeDocumentShare || msg.Topic != "notifications" {
				return errors.New("unexpected message")
			}
			return nil
		})

		pub := NewKafkaPublisherWithProducer(producer, "notifications")
		err := pub.Publish(context.Background(), model.Notification{ID: "n1", ReceiverID: "u2", Type: model.NotificationTypeDocumentShare})
		assert.NoError(t, err)
		assert.NoError(t, pub.Close())
	})

	t.Run("send failure", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, nil)
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		pub := NewKafkaPublisherWithProducer(producer, "notifications")
		err := pub.Publish(context.Background(), model.Notification{ReceiverID: "u2"})
		assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		assert.NoError(t, pub.Close())
	})

	t.Run("no brokers", func(t *testing.T) {
		_, err := NewKafkaPublisher(nil, "notifications")
		assert.EqualError(t, err, "kafka brokers are required")
	})
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(logger.NewJSON(&buf, time.UTC))

	require.NoError(t, pub.Publish(context.Background(), model.Notification{ID: "n1", ReceiverID: "u1", Type: model.NotificationTypeAdminAction}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "notification", entry["msg"])
	assert.Equal(t, "u1", entry["receiver_id"])
}
