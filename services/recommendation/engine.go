package recommendation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	recordsRepo "salonbook/database/repository/records"
	schedulerRepo "salonbook/database/repository/scheduler"
	"salonbook/models"
)

// Engine suggests a client's next visit from their history.
type Engine interface {
	// Recommend returns nil when there is nothing to suggest.
	Recommend(ctx context.Context, userID string) (*models.Recommendation, error)
}

// MasterLookup resolves master names.
type MasterLookup interface {
	Master(masterID string) (models.Master, bool)
}

// Policy tunes how a candidate date is derived and searched.
type Policy struct {
	RevisitIntervalDays int
	// MaxAttempts is the number of days scanned forward past an unusable candidate.
	MaxAttempts     int
	PreserveWeekday bool
}

// DefaultPolicy uses the plain interval; weekday alignment is opt-in.
func DefaultPolicy() Policy {
	return Policy{RevisitIntervalDays: 30, MaxAttempts: 7}
}

type DefaultEngine struct {
	History recordsRepo.VisitHistoryRepository
	Ledger  schedulerRepo.SchedulerRepository
	Masters MasterLookup
	Grid    models.SlotGrid
	Policy  Policy
	Clock   clock.Clock
	Logger  *zap.Logger
}

func NewDefaultEngine(
	history recordsRepo.VisitHistoryRepository,
	ledger schedulerRepo.SchedulerRepository,
	masters MasterLookup,
	grid models.SlotGrid,
	policy Policy,
	clk clock.Clock,
	logger *zap.Logger,
) (*DefaultEngine, error) {
	if history == nil || ledger == nil || masters == nil {
		return nil, fmt.Errorf("recommendation engine initialization error: history, ledger or masters is nil")
	}
	if policy.RevisitIntervalDays <= 0 {
		policy.RevisitIntervalDays = DefaultPolicy().RevisitIntervalDays
	}
	if policy.MaxAttempts < 0 {
		policy.MaxAttempts = 0
	}
	if clk == nil {
		clk = clock.WallClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultEngine{
		History: history,
		Ledger:  ledger,
		Masters: masters,
		Grid:    grid,
		Policy:  policy,
		Clock:   clk,
		Logger:  logger,
	}, nil
}

type candidate struct {
	masterID string
	date     string
	time     string
	last     models.VisitHistoryRecord
}

// Recommend picks the soonest free follow-up across every master the client
// has completed a visit with.
func (e *DefaultEngine) Recommend(ctx context.Context, userID string) (*models.Recommendation, error) {
	records, err := e.History.ListByClient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read visit history for %s: %w", userID, err)
	}
	latest := latestCompletedByMaster(records)
	if len(latest) == 0 {
		return nil, nil
	}

	masterIDs := make([]string, 0, len(latest))
	for id := range latest {
		masterIDs = append(masterIDs, id)
	}
	sort.Strings(masterIDs)

	var best *candidate
	for _, masterID := range masterIDs {
		c, err := e.candidateFor(ctx, latest[masterID])
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		if best == nil || c.date < best.date ||
			(c.date == best.date && (c.time < best.time || (c.time == best.time && c.masterID < best.masterID))) {
			best = c
		}
	}
	if best == nil {
		e.Logger.Debug("no recommendation", zap.String("user_id", userID))
		return nil, nil
	}

	name := best.masterID
	if m, ok := e.Masters.Master(best.masterID); ok {
		name = m.Name
	}
	return &models.Recommendation{
		UserID:     userID,
		MasterID:   best.masterID,
		MasterName: name,
		Date:       best.date,
		Time:       best.time,
		Message: fmt.Sprintf("Your last visit to %s was on %s. Book again on %s at %s?",
			name, best.last.Date, best.date, best.time),
	}, nil
}

// candidateFor returns nil when no usable slot exists within the scan window.
func (e *DefaultEngine) candidateFor(ctx context.Context, last models.VisitHistoryRecord) (*candidate, error) {
	lastDate, err := models.ParseDate(last.Date)
	if err != nil {
		e.Logger.Warn("skipping visit with unparsable date", zap.String("date", last.Date))
		return nil, nil
	}

	next := lastDate.AddDate(0, 0, e.Policy.RevisitIntervalDays)
	now := e.Clock.Now().UTC()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	if next.Before(tomorrow) {
		next = tomorrow
	}
	if e.Policy.PreserveWeekday {
		for next.Weekday() != lastDate.Weekday() {
			next = next.AddDate(0, 0, 1)
		}
	}

	for i := 0; i <= e.Policy.MaxAttempts; i++ {
		date := next.AddDate(0, 0, i).Format(models.DateLayout)
		if !e.Grid.Contains(date, last.Time) {
			continue
		}
		free, err := e.Ledger.IsFree(ctx, last.MasterID, date, last.Time)
		if err != nil {
			return nil, fmt.Errorf("failed to check slot %s %s %s: %w", last.MasterID, date, last.Time, err)
		}
		if free {
			return &candidate{masterID: last.MasterID, date: date, time: last.Time, last: last}, nil
		}
	}
	return nil, nil
}

func latestCompletedByMaster(records []models.VisitHistoryRecord) map[string]models.VisitHistoryRecord {
	latest := make(map[string]models.VisitHistoryRecord)
	for _, r := range records {
		if r.Status != models.VisitCompleted {
			continue
		}
		cur, ok := latest[r.MasterID]
		if !ok || r.Date > cur.Date || (r.Date == cur.Date && r.Time > cur.Time) {
			latest[r.MasterID] = r
		}
	}
	return latest
}
