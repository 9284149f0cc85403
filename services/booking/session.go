package booking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	bookingRepo "salonbook/database/repository/booking"
	"salonbook/models"
)

// SessionTracker owns the user-visible lifecycle status of a booking. The
// client and the master may both try to close the same session; the first
// transition wins and a repeat of the same transition is acknowledged.
type SessionTracker struct {
	bookings bookingRepo.BookingRepository
	logger   *zap.Logger
}

func NewSessionTracker(bookings bookingRepo.BookingRepository, logger *zap.Logger) *SessionTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionTracker{bookings: bookings, logger: logger}
}

// MarkCompleted returns redundant=true when the booking was already completed.
func (t *SessionTracker) MarkCompleted(ctx context.Context, bookingID string, actor models.Role) (bool, error) {
	return t.mark(ctx, bookingID, models.BookingStatusCompleted, actor)
}

// MarkCancelled returns redundant=true when the booking was already cancelled.
func (t *SessionTracker) MarkCancelled(ctx context.Context, bookingID string, actor models.Role) (bool, error) {
	return t.mark(ctx, bookingID, models.BookingStatusCancelled, actor)
}

func (t *SessionTracker) mark(ctx context.Context, bookingID string, target models.BookingStatus, actor models.Role) (bool, error) {
	err := t.bookings.SetStatus(ctx, bookingID, target)
	switch {
	case err == nil:
		t.logger.Debug("session status changed",
			zap.String("booking_id", bookingID),
			zap.String("status", string(target)),
			zap.String("actor", string(actor)))
		return false, nil
	case errors.Is(err, models.ErrNotFound):
		return false, newBookingError(ErrNotFound, fmt.Sprintf("booking %s not found", bookingID), nil)
	case !errors.Is(err, models.ErrInvalidTransition):
		return false, fmt.Errorf("failed to set status of booking %s: %w", bookingID, err)
	}

	current, err := t.bookings.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, newBookingError(ErrNotFound, fmt.Sprintf("booking %s not found", bookingID), nil)
		}
		return false, fmt.Errorf("failed to read booking %s: %w", bookingID, err)
	}
	if current.Status == target {
		t.logger.Info("redundant session transition acknowledged",
			zap.String("booking_id", bookingID),
			zap.String("status", string(target)),
			zap.String("actor", string(actor)))
		return true, nil
	}
	return false, newBookingError(ErrAlreadyTerminal,
		fmt.Sprintf("booking %s is already %s", bookingID, current.Status), nil)
}
