package bookingRepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"salonbook/models"
)

// MemoryBookingRepo is an in-process BookingRepository.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	clock    clock.Clock
	bookings map[string]models.Booking
}

func NewMemoryBookingRepo(clk clock.Clock) *MemoryBookingRepo {
	if clk == nil {
		clk = clock.WallClock
	}
	return &MemoryBookingRepo{
		clock:    clk,
		bookings: make(map[string]models.Booking),
	}
}

func (r *MemoryBookingRepo) Create(ctx context.Context, userID, masterID, date, at string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.Status == models.BookingStatusPending && b.MasterID == masterID && b.Date == date && b.Time == at {
			return nil, models.ErrSlotTaken
		}
	}
	now := r.clock.Now().UTC()
	b := models.Booking{
		ID:        uuid.New().String(),
		UserID:    userID,
		MasterID:  masterID,
		Date:      date,
		Time:      at,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    models.BookingStatusPending,
	}
	r.bookings[b.ID] = b
	return &b, nil
}

func (r *MemoryBookingRepo) Get(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &b, nil
}

func (r *MemoryBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	out := r.filter(func(b models.Booking) bool { return b.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryBookingRepo) ListByMaster(ctx context.Context, masterID string, includeAll bool) ([]models.Booking, error) {
	out := r.filter(func(b models.Booking) bool {
		return b.MasterID == masterID && (includeAll || b.Status == models.BookingStatusPending)
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// filter returns matches in CreatedAt order so later stable sorts are deterministic.
func (r *MemoryBookingRepo) filter(keep func(models.Booking) bool) []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Booking, 0)
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryBookingRepo) SetStatus(ctx context.Context, id string, status models.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return models.ErrNotFound
	}
	if !b.Status.CanTransitionTo(status) {
		return models.ErrInvalidTransition
	}
	b.Status = status
	b.UpdatedAt = r.clock.Now().UTC()
	r.bookings[id] = b
	return nil
}

func (r *MemoryBookingRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *MemoryBookingRepo) FindPendingBySlot(ctx context.Context, masterID, date, at string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if b.Status == models.BookingStatusPending && b.MasterID == masterID && b.Date == date && b.Time == at {
			return &b, nil
		}
	}
	return nil, models.ErrNotFound
}
