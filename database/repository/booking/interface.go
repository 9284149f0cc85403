package bookingRepo

import (
	"context"

	"salonbook/models"
)

// BookingRepository owns canonical booking records. It never checks slot
// availability; callers reserve through the schedule ledger first.
type BookingRepository interface {
	Create(ctx context.Context, userID, masterID, date, at string) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	// ListByUser returns the user's bookings by CreatedAt ascending.
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	// ListByMaster returns pending bookings by date and time unless includeAll is set.
	ListByMaster(ctx context.Context, masterID string, includeAll bool) ([]models.Booking, error)
	// SetStatus allows only pending -> completed and pending -> cancelled.
	SetStatus(ctx context.Context, id string, status models.BookingStatus) error
	Delete(ctx context.Context, id string) error
	FindPendingBySlot(ctx context.Context, masterID, date, at string) (*models.Booking, error)
}
