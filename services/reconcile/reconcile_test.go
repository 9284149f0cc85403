package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "salonbook/database/repository/booking"
	schedulerRepo "salonbook/database/repository/scheduler"
	"salonbook/models"
)

func TestSweep_ReleasesOnlyAbandonedReservations(t *testing.T) {
	clk := testclock.NewClock(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))
	ledger := schedulerRepo.NewMemorySchedulerRepo(clk)
	bookings := bookingRepo.NewMemoryBookingRepo(clk)
	r := NewReconciler(ledger, bookings, 2*time.Minute, clk, nil)
	ctx := context.Background()

	// Abandoned: reserved, never recorded.
	require.NoError(t, ledger.Reserve(ctx, "1", "2024-06-10", "14:00", "A"))
	// Completed saga.
	require.NoError(t, ledger.Reserve(ctx, "1", "2024-06-10", "15:00", "B"))
	_, err := bookings.Create(ctx, "B", "1", "2024-06-10", "15:00")
	require.NoError(t, err)

	clk.Advance(90 * time.Second)
	// Still in flight.
	require.NoError(t, ledger.Reserve(ctx, "1", "2024-06-10", "16:00", "C"))

	clk.Advance(time.Minute)
	report, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Scanned: 2, Released: 1, Kept: 1}, report)

	occupied, err := ledger.ListOccupied(ctx, "1", "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"15:00", "16:00"}, occupied)

	// Idempotent.
	report, err = r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Released)
}

// rebookingBookings lets a competing sweep and a new booking run between the
// pending lookup and the release of the first matching slot.
type rebookingBookings struct {
	*bookingRepo.MemoryBookingRepo
	ledger *schedulerRepo.MemorySchedulerRepo
	once   bool
	t      *testing.T
}

func (b *rebookingBookings) FindPendingBySlot(ctx context.Context, masterID, date, at string) (*models.Booking, error) {
	found, err := b.MemoryBookingRepo.FindPendingBySlot(ctx, masterID, date, at)
	if !b.once {
		b.once = true
		require.NoError(b.t, b.ledger.Release(ctx, masterID, date, at))
		require.NoError(b.t, b.ledger.Reserve(ctx, masterID, date, at, "B"))
		_, cerr := b.MemoryBookingRepo.Create(ctx, "B", masterID, date, at)
		require.NoError(b.t, cerr)
	}
	return found, err
}

func TestSweep_KeepsSlotReservedAgainAfterScan(t *testing.T) {
	clk := testclock.NewClock(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))
	ledger := schedulerRepo.NewMemorySchedulerRepo(clk)
	bookings := &rebookingBookings{MemoryBookingRepo: bookingRepo.NewMemoryBookingRepo(clk), ledger: ledger, t: t}
	r := NewReconciler(ledger, bookings, 2*time.Minute, clk, nil)
	ctx := context.Background()

	require.NoError(t, ledger.Reserve(ctx, "1", "2024-06-10", "14:00", "A"))
	clk.Advance(5 * time.Minute)

	report, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Scanned: 1, Kept: 1}, report)

	occupied, err := ledger.ListOccupied(ctx, "1", "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"14:00"}, occupied)
	pending, err := bookings.MemoryBookingRepo.FindPendingBySlot(ctx, "1", "2024-06-10", "14:00")
	require.NoError(t, err)
	assert.Equal(t, "B", pending.UserID)
}
