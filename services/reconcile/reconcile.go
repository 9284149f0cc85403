package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	bookingRepo "salonbook/database/repository/booking"
	schedulerRepo "salonbook/database/repository/scheduler"
	"salonbook/models"
)

// Report summarises one sweep.
type Report struct {
	Scanned  int `json:"scanned"`
	Released int `json:"released"`
	Kept     int `json:"kept"`
	Failed   int `json:"failed"`
}

// Reconciler frees slots that were reserved but never recorded, e.g. when a
// caller abandoned a create flow between the reserve and record steps.
type Reconciler struct {
	Ledger   schedulerRepo.SchedulerRepository
	Bookings bookingRepo.BookingRepository
	Timeout  time.Duration
	Clock    clock.Clock
	Logger   *zap.Logger
}

func NewReconciler(
	ledger schedulerRepo.SchedulerRepository,
	bookings bookingRepo.BookingRepository,
	timeout time.Duration,
	clk clock.Clock,
	logger *zap.Logger,
) *Reconciler {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if clk == nil {
		clk = clock.WallClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{Ledger: ledger, Bookings: bookings, Timeout: timeout, Clock: clk, Logger: logger}
}

// Sweep releases every reservation older than Timeout that has no pending
// booking. An entry is only removed while it is still the reservation that
// was scanned. Per-slot failures are counted and logged; the sweep goes on.
func (r *Reconciler) Sweep(ctx context.Context) (Report, error) {
	var report Report
	cutoff := r.Clock.Now().Add(-r.Timeout)

	entries, err := r.Ledger.ListReservedBefore(ctx, cutoff)
	if err != nil {
		return report, fmt.Errorf("failed to list stale reservations: %w", err)
	}

	for _, e := range entries {
		report.Scanned++
		log := r.Logger.With(
			zap.String("master_id", e.MasterID),
			zap.String("date", e.Date),
			zap.String("time", e.Time),
			zap.String("occupant", e.Occupant),
		)

		_, err := r.Bookings.FindPendingBySlot(ctx, e.MasterID, e.Date, e.Time)
		switch {
		case err == nil:
			report.Kept++
			continue
		case !errors.Is(err, models.ErrNotFound):
			report.Failed++
			log.Warn("pending booking lookup failed", zap.Error(err))
			continue
		}

		// Another sweep or a new booking may have replaced the entry since it was listed.
		released, err := r.Ledger.ReleaseHeld(ctx, e)
		if err != nil {
			report.Failed++
			log.Warn("stale reservation not released", zap.Error(err))
			continue
		}
		if !released {
			report.Kept++
			log.Debug("reservation changed since scan, left in place")
			continue
		}
		report.Released++
		log.Info("released reservation without booking", zap.Time("reserved_at", e.ReservedAt))
	}

	if report.Released > 0 || report.Failed > 0 {
		r.Logger.Info("reconcile sweep finished",
			zap.Int("scanned", report.Scanned),
			zap.Int("released", report.Released),
			zap.Int("kept", report.Kept),
			zap.Int("failed", report.Failed))
	}
	return report, nil
}
