package notification

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"salonbook/models"
	"salonbook/services/tasks"
)

// SyncInbox holds pending sync messages per recipient until they are drained.
type SyncInbox interface {
	Push(ctx context.Context, recipient string, msg models.SyncMessage) error
	// Drain empties every given inbox in one step and returns their messages
	// in recipient order, oldest first.
	Drain(ctx context.Context, recipients ...string) ([]models.SyncMessage, error)
}

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqNotifier hands booking events to the background worker.
type AsynqNotifier struct {
	client Enqueuer
	logger *zap.Logger
}

func NewAsynqNotifier(client Enqueuer, logger *zap.Logger) (*AsynqNotifier, error) {
	if client == nil {
		return nil, fmt.Errorf("notifier initialization error: asynq client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsynqNotifier{client: client, logger: logger}, nil
}

func (n *AsynqNotifier) Notify(ctx context.Context, event models.BookingEvent) error {
	task, opts, err := tasks.NewBookingEventTask(event)
	if err != nil {
		return fmt.Errorf("failed to build booking event task: %w", err)
	}
	info, err := n.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue booking event: %w", err)
	}
	n.logger.Debug("booking event enqueued",
		zap.String("task_id", info.ID),
		zap.String("type", string(event.Type)),
		zap.String("booking_id", event.BookingID))
	return nil
}

// UserRecipient and MasterRecipient name inboxes; masters are addressed by master id.
func UserRecipient(userID string) string { return userID }

func MasterRecipient(masterID string) string { return "master:" + masterID }

// EventSink handles a booking event synchronously.
type EventSink interface {
	Dispatch(ctx context.Context, event models.BookingEvent) error
}

// InlineNotifier dispatches events in the calling goroutine. Used when no queue is configured.
type InlineNotifier struct {
	Sink EventSink
}

func (n InlineNotifier) Notify(ctx context.Context, event models.BookingEvent) error {
	return n.Sink.Dispatch(ctx, event)
}
