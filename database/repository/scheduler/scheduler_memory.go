package schedulerRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/juju/clock"

	"salonbook/models"
)

// MemorySchedulerRepo keeps the ledger in process, guarded by a single mutex.
type MemorySchedulerRepo struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[models.SlotKey]models.ScheduleEntry
}

func NewMemorySchedulerRepo(clk clock.Clock) *MemorySchedulerRepo {
	if clk == nil {
		clk = clock.WallClock
	}
	return &MemorySchedulerRepo{
		clock:   clk,
		entries: make(map[models.SlotKey]models.ScheduleEntry),
	}
}

func (r *MemorySchedulerRepo) IsFree(ctx context.Context, masterID, date, at string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, taken := r.entries[models.SlotKey{MasterID: masterID, Date: date, Time: at}]
	return !taken, nil
}

func (r *MemorySchedulerRepo) Reserve(ctx context.Context, masterID, date, at, clientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := models.SlotKey{MasterID: masterID, Date: date, Time: at}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.entries[key]; taken {
		return models.ErrSlotTaken
	}
	r.entries[key] = models.ScheduleEntry{
		MasterID:   masterID,
		Date:       date,
		Time:       at,
		Occupant:   clientID,
		ReservedAt: r.clock.Now().UTC(),
	}
	return nil
}

func (r *MemorySchedulerRepo) Release(ctx context.Context, masterID, date, at string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, models.SlotKey{MasterID: masterID, Date: date, Time: at})
	return nil
}

func (r *MemorySchedulerRepo) ReleaseHeld(ctx context.Context, held models.ScheduleEntry) (bool, error) {
	key := models.SlotKey{MasterID: held.MasterID, Date: held.Date, Time: held.Time}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok || e.Occupant != held.Occupant {
		return false, nil
	}
	if !held.ReservedAt.IsZero() && !e.ReservedAt.Equal(held.ReservedAt) {
		return false, nil
	}
	delete(r.entries, key)
	return true, nil
}

func (r *MemorySchedulerRepo) ListOccupied(ctx context.Context, masterID, date string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	times := make([]string, 0)
	for k := range r.entries {
		if k.MasterID == masterID && k.Date == date {
			times = append(times, k.Time)
		}
	}
	sort.Strings(times)
	return times, nil
}

func (r *MemorySchedulerRepo) ListReservedBefore(ctx context.Context, cutoff time.Time) ([]models.ScheduleEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ScheduleEntry
	for _, e := range r.entries {
		if e.ReservedAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservedAt.Before(out[j].ReservedAt) })
	return out, nil
}
