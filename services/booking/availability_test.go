package booking

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schedulerRepo "salonbook/database/repository/scheduler"
	"salonbook/models"
	"salonbook/services/directory"
)

func newAvailability(t *testing.T, now time.Time) (*DefaultAvailabilityService, *schedulerRepo.MemorySchedulerRepo) {
	t.Helper()
	clk := testclock.NewClock(now)
	ledger := schedulerRepo.NewMemorySchedulerRepo(clk)
	dir := directory.New(map[string]string{"1": "Anna", "2": "Boris"}, nil, nil)
	svc, err := NewDefaultAvailabilityService(ledger, dir, models.DefaultSlotGrid(), clk)
	require.NoError(t, err)
	return svc, ledger
}

func TestGetDaySchedule(t *testing.T) {
	svc, ledger := newAvailability(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	require.NoError(t, ledger.Reserve(ctx, "1", "2024-06-10", "14:00", "A"))
	require.NoError(t, ledger.Reserve(ctx, "1", "2024-06-10", "10:00", "B"))

	day, err := svc.GetDaySchedule(ctx, "1", "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, "Anna", day.MasterName)
	assert.Len(t, day.AllSlots, 8)
	assert.Equal(t, []string{"10:00", "14:00"}, day.Booked)
	assert.Equal(t, []string{"11:00", "12:00", "13:00", "15:00", "16:00", "17:00"}, day.Available)

	weekend, err := svc.GetDaySchedule(ctx, "1", "2024-06-15")
	require.NoError(t, err)
	assert.Empty(t, weekend.AllSlots)
	assert.Empty(t, weekend.Available)

	_, err = svc.GetDaySchedule(ctx, "7", "2024-06-10")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetAvailability(ctx, "1", "June 10")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAlternatives_FallsBackToLaterDates(t *testing.T) {
	svc, ledger := newAvailability(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	alts, err := svc.Alternatives(ctx, "1", "2024-06-10", "15:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"16:00", "17:00"}, alts.Times)
	assert.Empty(t, alts.Dates)

	require.NoError(t, ledger.Reserve(ctx, "1", "2024-06-11", "17:00", "B"))
	alts, err = svc.Alternatives(ctx, "1", "2024-06-10", "17:00")
	require.NoError(t, err)
	assert.Empty(t, alts.Times)
	assert.Equal(t, []string{"2024-06-12", "2024-06-13", "2024-06-14"}, alts.Dates)
}

func TestGetMasterAvailability(t *testing.T) {
	// Friday afternoon: only 17:00 remains today.
	svc, ledger := newAvailability(t, time.Date(2024, 6, 14, 16, 10, 0, 0, time.UTC))
	ctx := context.Background()
	require.NoError(t, ledger.Reserve(ctx, "2", "2024-06-14", "17:00", "A"))

	av, err := svc.GetMasterAvailability(ctx, "2", 0)
	require.NoError(t, err)
	require.Len(t, av.Days, 5)
	assert.Equal(t, "Boris", av.MasterName)

	assert.Equal(t, "2024-06-14", av.Days[0].Date)
	assert.False(t, av.Days[0].Available)
	assert.Equal(t, "Saturday", av.Days[1].Weekday)
	assert.False(t, av.Days[1].Available)
	assert.False(t, av.Days[2].Available)
	assert.True(t, av.Days[3].Available)
	assert.Len(t, av.Days[3].AvailableSlots, 8)
	assert.Equal(t, "2024-06-17", av.NextAvailable)
}
