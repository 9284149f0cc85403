package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"salonbook/models"
)

// MasterLookup resolves master names for message texts.
type MasterLookup interface {
	Master(masterID string) (models.Master, bool)
}

// Dispatcher turns booking events into sync messages for the client and the master.
type Dispatcher struct {
	inbox   SyncInbox
	masters MasterLookup
	logger  *zap.Logger
}

func NewDispatcher(inbox SyncInbox, masters MasterLookup, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{inbox: inbox, masters: masters, logger: logger}
}

func (d *Dispatcher) masterName(id string) string {
	if m, ok := d.masters.Master(id); ok {
		return m.Name
	}
	return "master " + id
}

// Dispatch delivers the event to both inboxes. Delivery is at-least-once:
// a retried task may push the same message again.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.BookingEvent) error {
	name := d.masterName(event.MasterID)
	when := fmt.Sprintf("%s at %s", event.Date, event.Time)

	var clientTitle, clientBody, masterTitle, masterBody string
	switch event.Type {
	case models.EventBookingCreated:
		clientTitle = "Booking confirmed"
		clientBody = fmt.Sprintf("Your appointment with %s on %s is confirmed.", name, when)
		masterTitle = "New booking"
		masterBody = fmt.Sprintf("New appointment on %s.", when)
	case models.EventBookingCancelled:
		clientTitle = "Booking cancelled"
		clientBody = fmt.Sprintf("Your appointment with %s on %s was cancelled.", name, when)
		masterTitle = "Booking cancelled"
		masterBody = fmt.Sprintf("The appointment on %s was cancelled by the %s.", when, event.Initiator)
	case models.EventBookingCompleted:
		clientTitle = "Visit completed"
		clientBody = fmt.Sprintf("Thank you for visiting %s on %s.", name, when)
		masterTitle = "Visit completed"
		masterBody = fmt.Sprintf("The appointment on %s is marked as completed.", when)
	default:
		d.logger.Warn("unknown booking event type", zap.String("type", string(event.Type)))
		return nil
	}

	data := map[string]any{
		"bookingId": event.BookingID,
		"masterId":  event.MasterID,
		"date":      event.Date,
		"time":      event.Time,
	}
	deliveries := []struct {
		recipient, title, body string
	}{
		{UserRecipient(event.UserID), clientTitle, clientBody},
		{MasterRecipient(event.MasterID), masterTitle, masterBody},
	}
	for _, dl := range deliveries {
		msg := models.SyncMessage{
			ID:        uuid.New().String(),
			UserID:    dl.recipient,
			Type:      string(event.Type),
			Title:     dl.title,
			Body:      dl.body,
			Data:      data,
			CreatedAt: event.OccurredAt,
		}
		if err := d.inbox.Push(ctx, dl.recipient, msg); err != nil {
			return fmt.Errorf("failed to deliver %s to %s: %w", event.Type, dl.recipient, err)
		}
	}
	d.logger.Debug("booking event dispatched",
		zap.String("booking_id", event.BookingID), zap.String("type", string(event.Type)))
	return nil
}

// Drain empties the inboxes a caller may read: their own and, for a master,
// the master's. Both go in one inbox call so a failure loses neither.
func (d *Dispatcher) Drain(ctx context.Context, caller models.Caller) ([]models.SyncMessage, error) {
	recipients := []string{UserRecipient(caller.UserID)}
	if caller.Role == models.RoleMaster && caller.MasterID != "" {
		recipients = append(recipients, MasterRecipient(caller.MasterID))
	}
	return d.inbox.Drain(ctx, recipients...)
}
