package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"go.uber.org/zap"

	bookingRepo "salonbook/database/repository/booking"
	recordsRepo "salonbook/database/repository/records"
	schedulerRepo "salonbook/database/repository/scheduler"
	"salonbook/models"
)

// HistoryRetryPolicy bounds the retries of a visit history append.
type HistoryRetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBookingService is the booking orchestrator. It holds no state between
// calls; every step it issues is idempotent so callers may retry a whole flow.
type DefaultBookingService struct {
	Ledger       schedulerRepo.SchedulerRepository
	Bookings     bookingRepo.BookingRepository
	History      recordsRepo.VisitHistoryRepository
	Session      *SessionTracker
	Availability AvailabilityService
	Directory    Directory
	Notifier     Notifier
	Grid         models.SlotGrid
	Retry        HistoryRetryPolicy
	Clock        clock.Clock
	Logger       *zap.Logger
}

// BookingDeps groups the collaborators of the orchestrator.
type BookingDeps struct {
	Ledger       schedulerRepo.SchedulerRepository
	Bookings     bookingRepo.BookingRepository
	History      recordsRepo.VisitHistoryRepository
	Availability AvailabilityService
	Directory    Directory
	Notifier     Notifier
	Grid         models.SlotGrid
	Retry        HistoryRetryPolicy
	Clock        clock.Clock
	Logger       *zap.Logger
}

func NewDefaultBookingService(deps BookingDeps) (*DefaultBookingService, error) {
	if deps.Ledger == nil || deps.Bookings == nil || deps.History == nil {
		return nil, fmt.Errorf("booking service initialization error: ledger, bookings or history is nil")
	}
	if deps.Directory == nil || deps.Availability == nil {
		return nil, fmt.Errorf("booking service initialization error: directory or availability is nil")
	}
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.WallClock
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Retry.Attempts <= 0 {
		deps.Retry.Attempts = 1
	}
	if deps.Retry.Delay <= 0 {
		deps.Retry.Delay = 10 * time.Millisecond
	}
	return &DefaultBookingService{
		Ledger:       deps.Ledger,
		Bookings:     deps.Bookings,
		History:      deps.History,
		Session:      NewSessionTracker(deps.Bookings, deps.Logger),
		Availability: deps.Availability,
		Directory:    deps.Directory,
		Notifier:     deps.Notifier,
		Grid:         deps.Grid,
		Retry:        deps.Retry,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}, nil
}

func (s *DefaultBookingService) validateSlot(masterID, date, at string) error {
	if _, ok := s.Directory.Master(masterID); !ok {
		return newBookingError(ErrInvalidRequest, fmt.Sprintf("unknown master %s", masterID), nil)
	}
	if _, err := models.ParseDate(date); err != nil {
		return newBookingError(ErrInvalidRequest, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date), err)
	}
	if _, err := models.ParseSlotTime(at); err != nil {
		return newBookingError(ErrInvalidRequest, fmt.Sprintf("invalid time %q, expected HH:MM", at), err)
	}
	if !s.Grid.Contains(date, at) {
		return newBookingError(ErrInvalidSlot, fmt.Sprintf("%s %s is not a bookable slot", date, at), nil)
	}
	return nil
}

// CreateBooking reserves the slot, then records the booking. If recording
// fails the reservation is released; a failed release is escalated.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if req.UserID == "" {
		return nil, newBookingError(ErrInvalidRequest, "user id is required", nil)
	}
	if err := s.validateSlot(req.MasterID, req.Date, req.Time); err != nil {
		return nil, err
	}
	log := s.Logger.With(
		zap.String("user_id", req.UserID),
		zap.String("master_id", req.MasterID),
		zap.String("date", req.Date),
		zap.String("time", req.Time),
	)

	// Requested -> Reserved
	if err := s.Ledger.Reserve(ctx, req.MasterID, req.Date, req.Time, req.UserID); err != nil {
		if errors.Is(err, models.ErrSlotTaken) {
			log.Info("slot unavailable")
			return nil, s.slotUnavailable(ctx, req.MasterID, req.Date, req.Time)
		}
		log.Error("reserve failed", zap.Error(err))
		return nil, newBookingError(ErrBookingCreateFailed, "could not reserve slot", err)
	}

	// Reserved -> Recorded
	b, err := s.Bookings.Create(ctx, req.UserID, req.MasterID, req.Date, req.Time)
	if err != nil {
		if errors.Is(err, models.ErrSlotTaken) {
			// A pending booking already holds this slot, so the reservation
			// now mirrors it and must stay.
			log.Warn("pending booking already exists for reserved slot")
			return nil, s.slotUnavailable(ctx, req.MasterID, req.Date, req.Time)
		}

		// Reserved -> Released. The caller may have gone away; compensation must still run.
		if rerr := s.Ledger.Release(context.WithoutCancel(ctx), req.MasterID, req.Date, req.Time); rerr != nil {
			log.Error("compensation failed, slot left reserved",
				zap.NamedError("create_error", err), zap.NamedError("release_error", rerr))
			return nil, newBookingError(ErrCompensationFailed,
				"booking was not recorded and the slot could not be released", errors.Join(err, rerr))
		}
		log.Warn("booking create failed, reservation released", zap.Error(err))
		return nil, newBookingError(ErrBookingCreateFailed, "could not record booking", err)
	}

	log.Info("booking confirmed", zap.String("booking_id", b.ID))
	s.notify(ctx, models.EventBookingCreated, b, models.RoleClient)
	return b, nil
}

func (s *DefaultBookingService) slotUnavailable(ctx context.Context, masterID, date, at string) error {
	be := newBookingError(ErrSlotUnavailable, fmt.Sprintf("slot %s %s is already taken", date, at), nil)
	alts, err := s.Availability.Alternatives(ctx, masterID, date, at)
	if err != nil {
		s.Logger.Warn("could not compute alternatives", zap.Error(err))
		return be
	}
	if !alts.Empty() {
		be.Alternatives = &alts
	}
	return be
}

// loadForSlot fetches the booking and checks the caller's slot parameters against it.
func (s *DefaultBookingService) loadForSlot(ctx context.Context, bookingID, masterID, date, at string) (*models.Booking, error) {
	if bookingID == "" {
		return nil, newBookingError(ErrInvalidRequest, "booking id is required", nil)
	}
	b, err := s.Bookings.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, newBookingError(ErrNotFound, fmt.Sprintf("booking %s not found", bookingID), nil)
		}
		return nil, fmt.Errorf("failed to read booking %s: %w", bookingID, err)
	}
	if b.MasterID != masterID || b.Date != date || b.Time != at {
		return nil, newBookingError(ErrInvalidRequest,
			fmt.Sprintf("booking %s is for master %s at %s %s", b.ID, b.MasterID, b.Date, b.Time), nil)
	}
	return b, nil
}

// CancelBooking retires the booking record, frees the slot and appends a
// cancelled visit when a person initiated the cancellation.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, req models.CancelRequest) error {
	b, err := s.loadForSlot(ctx, req.BookingID, req.MasterID, req.Date, req.Time)
	if err != nil {
		return err
	}
	initiator := req.Initiator
	if !initiator.Valid() {
		initiator = models.RoleClient
	}
	log := s.Logger.With(
		zap.String("booking_id", b.ID),
		zap.String("master_id", b.MasterID),
		zap.String("initiator", string(initiator)),
	)

	redundant := false
	switch req.Mode {
	case models.CancelByDelete:
		if b.Status == models.BookingStatusCompleted {
			return newBookingError(ErrAlreadyTerminal, fmt.Sprintf("booking %s is already completed", b.ID), nil)
		}
		if err := s.Bookings.Delete(ctx, b.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("failed to delete booking %s: %w", b.ID, err)
		}
		redundant = b.Status == models.BookingStatusCancelled
	case models.CancelByStatus, "":
		redundant, err = s.Session.MarkCancelled(ctx, b.ID, initiator)
		if err != nil {
			return err
		}
	default:
		return newBookingError(ErrInvalidRequest, fmt.Sprintf("unknown cancel mode %q", req.Mode), nil)
	}

	if err := s.releaseSlot(ctx, b, redundant, log); err != nil {
		log.Error("release after cancel failed", zap.Error(err))
		return fmt.Errorf("failed to release slot for booking %s: %w", b.ID, err)
	}

	if initiator != models.RoleSystem {
		s.appendHistory(ctx, models.VisitHistoryRecord{
			MasterID:   b.MasterID,
			ClientID:   b.UserID,
			ClientName: s.Directory.ClientName(ctx, b.UserID),
			Date:       b.Date,
			Time:       b.Time,
			Status:     models.VisitCancelled,
		}, redundant)
	}

	log.Info("booking cancelled", zap.Bool("redundant", redundant), zap.String("mode", string(req.Mode)))
	if !redundant {
		s.notify(ctx, models.EventBookingCancelled, b, initiator)
	}
	return nil
}

// CompleteBooking closes the session, appends the completed visit and frees
// the slot, in that order: history is written before the slot is released.
func (s *DefaultBookingService) CompleteBooking(ctx context.Context, req models.CompleteRequest) error {
	b, err := s.loadForSlot(ctx, req.BookingID, req.MasterID, req.Date, req.Time)
	if err != nil {
		return err
	}
	if req.ClientID != "" && req.ClientID != b.UserID {
		return newBookingError(ErrInvalidRequest, fmt.Sprintf("booking %s does not belong to client %s", b.ID, req.ClientID), nil)
	}
	actor := req.Actor
	if !actor.Valid() {
		actor = models.RoleClient
	}
	log := s.Logger.With(
		zap.String("booking_id", b.ID),
		zap.String("master_id", b.MasterID),
		zap.String("actor", string(actor)),
	)

	redundant, err := s.Session.MarkCompleted(ctx, b.ID, actor)
	if err != nil {
		return err
	}

	clientName := req.ClientName
	if clientName == "" {
		clientName = s.Directory.ClientName(ctx, b.UserID)
	}
	s.appendHistory(ctx, models.VisitHistoryRecord{
		MasterID:   b.MasterID,
		ClientID:   b.UserID,
		ClientName: clientName,
		Date:       b.Date,
		Time:       b.Time,
		Status:     models.VisitCompleted,
	}, redundant)

	if err := s.releaseSlot(ctx, b, redundant, log); err != nil {
		log.Error("release after completion failed", zap.Error(err))
		return fmt.Errorf("failed to release slot for booking %s: %w", b.ID, err)
	}

	log.Info("booking completed", zap.Bool("redundant", redundant))
	if !redundant {
		s.notify(ctx, models.EventBookingCompleted, b, actor)
	}
	return nil
}

// releaseSlot frees the slot of a booking that just left pending. A repeated
// transition may arrive after the slot was booked again, so then only the
// booking's own reservation is released, and only if no pending booking
// holds the slot.
func (s *DefaultBookingService) releaseSlot(ctx context.Context, b *models.Booking, repeat bool, log *zap.Logger) error {
	if !repeat {
		return s.Ledger.Release(ctx, b.MasterID, b.Date, b.Time)
	}
	holder, err := s.Bookings.FindPendingBySlot(ctx, b.MasterID, b.Date, b.Time)
	switch {
	case err == nil:
		log.Debug("slot rebooked, keeping reservation", zap.String("holder_id", holder.ID))
		return nil
	case !errors.Is(err, models.ErrNotFound):
		return err
	}
	released, err := s.Ledger.ReleaseHeld(ctx, models.ScheduleEntry{
		MasterID: b.MasterID,
		Date:     b.Date,
		Time:     b.Time,
		Occupant: b.UserID,
	})
	if err != nil {
		return err
	}
	if released {
		log.Info("released reservation left by an earlier attempt")
	}
	return nil
}

// appendHistory is best effort: failures are logged, never returned. When the
// transition was a repeat, the record is only appended if an earlier attempt
// did not get that far.
func (s *DefaultBookingService) appendHistory(ctx context.Context, rec models.VisitHistoryRecord, repeat bool) {
	log := s.Logger.With(
		zap.String("master_id", rec.MasterID),
		zap.String("client_id", rec.ClientID),
		zap.String("status", string(rec.Status)),
	)
	if repeat {
		exists, err := s.History.Exists(ctx, rec)
		if err != nil {
			log.Warn("history lookup failed, appending anyway", zap.Error(err))
		} else if exists {
			return
		}
	}
	rec.RecordedAt = s.Clock.Now().UTC()

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return s.History.Append(ctx, rec)
		},
		IsFatalError: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		NotifyFunc: func(err error, attempt int) {
			log.Debug("history append attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		},
		Attempts: s.Retry.Attempts,
		Delay:    s.Retry.Delay,
		Clock:    clock.WallClock,
		Stop:     ctx.Done(),
	})
	if err != nil {
		log.Error("visit history append failed", zap.Error(retry.LastError(err)))
	}
}

func (s *DefaultBookingService) notify(ctx context.Context, typ models.BookingEventType, b *models.Booking, initiator models.Role) {
	event := models.BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		UserID:     b.UserID,
		MasterID:   b.MasterID,
		Date:       b.Date,
		Time:       b.Time,
		Initiator:  initiator,
		OccurredAt: s.Clock.Now().UTC(),
	}
	if err := s.Notifier.Notify(ctx, event); err != nil {
		s.Logger.Warn("booking event not delivered",
			zap.String("booking_id", b.ID), zap.String("type", string(typ)), zap.Error(err))
	}
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, newBookingError(ErrNotFound, fmt.Sprintf("booking %s not found", bookingID), nil)
		}
		return nil, fmt.Errorf("failed to read booking %s: %w", bookingID, err)
	}
	return b, nil
}

func (s *DefaultBookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings, err := s.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for user %s: %w", userID, err)
	}
	return bookings, nil
}

func (s *DefaultBookingService) ListMasterBookings(ctx context.Context, masterID string, includeAll bool) ([]models.Booking, error) {
	bookings, err := s.Bookings.ListByMaster(ctx, masterID, includeAll)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for master %s: %w", masterID, err)
	}
	return bookings, nil
}
