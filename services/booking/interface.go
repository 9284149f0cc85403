package booking

import (
	"context"

	"salonbook/models"
)

// BookingService realises create, cancel and complete as saga flows across
// the schedule ledger, booking store, session tracker and visit history.
type BookingService interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, req models.CancelRequest) error
	CompleteBooking(ctx context.Context, req models.CompleteRequest) error
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	ListMasterBookings(ctx context.Context, masterID string, includeAll bool) ([]models.Booking, error)
}

// AvailabilityService answers read-only calendar questions from the ledger.
type AvailabilityService interface {
	GetAvailability(ctx context.Context, masterID, date string) ([]string, error)
	GetDaySchedule(ctx context.Context, masterID, date string) (*models.DaySchedule, error)
	GetMasterAvailability(ctx context.Context, masterID string, days int) (*models.MasterAvailability, error)
	Alternatives(ctx context.Context, masterID, date, at string) (models.Alternatives, error)
}

// Notifier receives booking events after a flow has succeeded.
type Notifier interface {
	Notify(ctx context.Context, event models.BookingEvent) error
}

// Directory resolves the external master directory and client display names.
type Directory interface {
	Master(masterID string) (models.Master, bool)
	ClientName(ctx context.Context, clientID string) string
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, models.BookingEvent) error { return nil }
