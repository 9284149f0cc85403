package recordsRepo

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"salonbook/models"
)

// MemoryRecordRepo is an in-process VisitHistoryRepository.
type MemoryRecordRepo struct {
	mu      sync.RWMutex
	clock   clock.Clock
	records []models.VisitHistoryRecord
}

func NewMemoryRecordRepo(clk clock.Clock) *MemoryRecordRepo {
	if clk == nil {
		clk = clock.WallClock
	}
	return &MemoryRecordRepo{clock: clk}
}

func (r *MemoryRecordRepo) Append(ctx context.Context, record models.VisitHistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = r.clock.Now().UTC()
	}
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRecordRepo) ListByMaster(ctx context.Context, masterID string) ([]models.VisitHistoryRecord, error) {
	return r.list(func(rec models.VisitHistoryRecord) bool { return rec.MasterID == masterID }), nil
}

func (r *MemoryRecordRepo) ListByClient(ctx context.Context, clientID string) ([]models.VisitHistoryRecord, error) {
	return r.list(func(rec models.VisitHistoryRecord) bool { return rec.ClientID == clientID }), nil
}

func (r *MemoryRecordRepo) Exists(ctx context.Context, record models.VisitHistoryRecord) (bool, error) {
	key := record.Key()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.Key() == key {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the raw number of stored records, duplicates included.
func (r *MemoryRecordRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *MemoryRecordRepo) list(keep func(models.VisitHistoryRecord) bool) []models.VisitHistoryRecord {
	r.mu.RLock()
	matched := make([]models.VisitHistoryRecord, 0)
	for _, rec := range r.records {
		if keep(rec) {
			matched = append(matched, rec)
		}
	}
	r.mu.RUnlock()
	return models.DedupVisits(matched)
}
