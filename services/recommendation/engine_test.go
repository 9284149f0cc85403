package recommendation

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recordsRepo "salonbook/database/repository/records"
	schedulerRepo "salonbook/database/repository/scheduler"
	"salonbook/models"
	"salonbook/services/directory"
)

type harness struct {
	engine  *DefaultEngine
	history *recordsRepo.MemoryRecordRepo
	ledger  *schedulerRepo.MemorySchedulerRepo
}

func newHarness(t *testing.T, now time.Time, policy Policy) *harness {
	t.Helper()
	clk := testclock.NewClock(now)
	h := &harness{
		history: recordsRepo.NewMemoryRecordRepo(clk),
		ledger:  schedulerRepo.NewMemorySchedulerRepo(clk),
	}
	dir := directory.New(map[string]string{"1": "Anna", "2": "Boris"}, nil, nil)
	engine, err := NewDefaultEngine(h.history, h.ledger, dir, models.DefaultSlotGrid(), policy, clk, nil)
	require.NoError(t, err)
	h.engine = engine
	return h
}

func (h *harness) visit(t *testing.T, master, date, at string, status models.VisitStatus) {
	t.Helper()
	require.NoError(t, h.history.Append(context.Background(), models.VisitHistoryRecord{
		MasterID: master, ClientID: "A", ClientName: "Alice", Date: date, Time: at, Status: status,
	}))
}

func (h *harness) occupy(t *testing.T, master, date, at string) {
	t.Helper()
	require.NoError(t, h.ledger.Reserve(context.Background(), master, date, at, "someone"))
}

var may2 = time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

func TestRecommend_ThirtyDaysAfterLastVisit(t *testing.T) {
	h := newHarness(t, may2, DefaultPolicy())
	h.visit(t, "2", "2024-05-01", "10:00", models.VisitCompleted)

	rec, err := h.engine.Recommend(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "A", rec.UserID)
	assert.Equal(t, "2", rec.MasterID)
	assert.Equal(t, "Boris", rec.MasterName)
	assert.Equal(t, "2024-05-31", rec.Date)
	assert.Equal(t, "10:00", rec.Time)
	assert.Contains(t, rec.Message, "Boris")
}

func TestRecommend_ScansForwardWhenOccupied(t *testing.T) {
	h := newHarness(t, may2, DefaultPolicy())
	h.visit(t, "2", "2024-05-01", "10:00", models.VisitCompleted)
	h.occupy(t, "2", "2024-05-31", "10:00")

	rec, err := h.engine.Recommend(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, rec)
	// Weekend skipped.
	assert.Equal(t, "2024-06-03", rec.Date)
	assert.Equal(t, "10:00", rec.Time)
}

func TestRecommend_SuppressedWhenWindowIsFull(t *testing.T) {
	h := newHarness(t, may2, DefaultPolicy())
	h.visit(t, "2", "2024-05-01", "10:00", models.VisitCompleted)
	for _, d := range []string{"2024-05-31", "2024-06-03", "2024-06-04", "2024-06-05", "2024-06-06", "2024-06-07"} {
		h.occupy(t, "2", d, "10:00")
	}

	rec, err := h.engine.Recommend(context.Background(), "A")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRecommend_SoonestAcrossMasters(t *testing.T) {
	h := newHarness(t, may2, DefaultPolicy())
	h.visit(t, "1", "2024-05-10", "11:00", models.VisitCompleted)
	h.visit(t, "2", "2024-04-01", "12:00", models.VisitCompleted)
	h.visit(t, "2", "2024-05-01", "10:00", models.VisitCompleted)
	// Cancellations never count as the last visit.
	h.visit(t, "1", "2024-04-02", "10:00", models.VisitCancelled)

	rec, err := h.engine.Recommend(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2", rec.MasterID)
	assert.Equal(t, "2024-05-31", rec.Date)
}

func TestRecommend_TieBreaksByTimeThenMaster(t *testing.T) {
	h := newHarness(t, may2, DefaultPolicy())
	h.visit(t, "2", "2024-05-01", "10:00", models.VisitCompleted)
	h.visit(t, "1", "2024-05-01", "10:00", models.VisitCompleted)

	rec, err := h.engine.Recommend(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "1", rec.MasterID)
}

func TestRecommend_OldVisitStartsFromTomorrow(t *testing.T) {
	h := newHarness(t, time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC), DefaultPolicy())
	h.visit(t, "1", "2023-01-02", "13:00", models.VisitCompleted)

	rec, err := h.engine.Recommend(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2024-06-11", rec.Date)
	assert.Equal(t, "13:00", rec.Time)
}

func TestRecommend_PreserveWeekday(t *testing.T) {
	policy := DefaultPolicy()
	policy.PreserveWeekday = true
	h := newHarness(t, may2, policy)
	// Wednesday.
	h.visit(t, "2", "2024-05-01", "10:00", models.VisitCompleted)

	rec, err := h.engine.Recommend(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2024-06-05", rec.Date)
}

func TestRecommend_NoHistory(t *testing.T) {
	h := newHarness(t, may2, DefaultPolicy())
	h.visit(t, "2", "2024-05-01", "10:00", models.VisitCancelled)

	rec, err := h.engine.Recommend(context.Background(), "A")
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = h.engine.Recommend(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
