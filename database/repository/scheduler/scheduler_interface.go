package schedulerRepo

import (
	"context"
	"time"

	"salonbook/models"
)

// SchedulerRepository is the schedule ledger: the single source of truth for
// whether a (master, date, time) slot is occupied.
type SchedulerRepository interface {
	IsFree(ctx context.Context, masterID, date, at string) (bool, error)
	// Reserve atomically moves a slot from free to occupied by clientID. It fails
	// with models.ErrSlotTaken if anyone holds the slot, the same client included.
	Reserve(ctx context.Context, masterID, date, at, clientID string) error
	// Release frees the slot. Releasing a free slot is not an error.
	Release(ctx context.Context, masterID, date, at string) error
	// ReleaseHeld frees the slot only while it is still held by held.Occupant and,
	// when held.ReservedAt is set, by that same reservation. It reports whether
	// an entry was removed.
	ReleaseHeld(ctx context.Context, held models.ScheduleEntry) (bool, error)
	ListOccupied(ctx context.Context, masterID, date string) ([]string, error)
	// ListReservedBefore returns every entry reserved strictly before cutoff.
	ListReservedBefore(ctx context.Context, cutoff time.Time) ([]models.ScheduleEntry, error)
}
