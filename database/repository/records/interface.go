package recordsRepo

import (
	"context"

	"salonbook/models"
)

// VisitHistoryRepository is the append-only ledger of terminal visit outcomes.
// Appends may be duplicated by retries; readers collapse them.
type VisitHistoryRepository interface {
	Append(ctx context.Context, record models.VisitHistoryRecord) error
	ListByMaster(ctx context.Context, masterID string) ([]models.VisitHistoryRecord, error)
	ListByClient(ctx context.Context, clientID string) ([]models.VisitHistoryRecord, error)
	// Exists reports whether a record with the same visit key is already stored.
	Exists(ctx context.Context, record models.VisitHistoryRecord) (bool, error)
}
