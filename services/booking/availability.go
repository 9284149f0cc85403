package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"

	schedulerRepo "salonbook/database/repository/scheduler"
	"salonbook/models"
)

const (
	maxAlternatives      = 3
	alternativeDateRange = 7
	defaultAvailableDays = 5
	maxAvailableDays     = 31
)

// DefaultAvailabilityService derives calendar views from the schedule ledger and the slot grid.
type DefaultAvailabilityService struct {
	Ledger    schedulerRepo.SchedulerRepository
	Directory Directory
	Grid      models.SlotGrid
	Clock     clock.Clock
}

func NewDefaultAvailabilityService(
	ledger schedulerRepo.SchedulerRepository,
	directory Directory,
	grid models.SlotGrid,
	clk clock.Clock,
) (*DefaultAvailabilityService, error) {
	if ledger == nil || directory == nil {
		return nil, fmt.Errorf("availability service initialization error: ledger or directory is nil")
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &DefaultAvailabilityService{Ledger: ledger, Directory: directory, Grid: grid, Clock: clk}, nil
}

func (s *DefaultAvailabilityService) master(masterID string) (models.Master, error) {
	m, ok := s.Directory.Master(masterID)
	if !ok {
		return models.Master{}, newBookingError(ErrNotFound, fmt.Sprintf("master %s not found", masterID), nil)
	}
	return m, nil
}

func checkDate(date string) error {
	if _, err := models.ParseDate(date); err != nil {
		return newBookingError(ErrInvalidRequest, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date), err)
	}
	return nil
}

// GetAvailability returns the occupied times of a master's day.
func (s *DefaultAvailabilityService) GetAvailability(ctx context.Context, masterID, date string) ([]string, error) {
	if _, err := s.master(masterID); err != nil {
		return nil, err
	}
	if err := checkDate(date); err != nil {
		return nil, err
	}
	occupied, err := s.Ledger.ListOccupied(ctx, masterID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupied slots: %w", err)
	}
	return occupied, nil
}

// GetDaySchedule returns every grid slot of the day split into booked and available.
func (s *DefaultAvailabilityService) GetDaySchedule(ctx context.Context, masterID, date string) (*models.DaySchedule, error) {
	m, err := s.master(masterID)
	if err != nil {
		return nil, err
	}
	if err := checkDate(date); err != nil {
		return nil, err
	}
	occupied, err := s.Ledger.ListOccupied(ctx, masterID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupied slots: %w", err)
	}

	all := s.Grid.Times(date)
	return &models.DaySchedule{
		MasterID:   m.ID,
		MasterName: m.Name,
		Date:       date,
		AllSlots:   nonNil(all),
		Booked:     occupied,
		Available:  subtract(all, occupied),
	}, nil
}

// GetMasterAvailability lists free slots for the next `days` days starting today.
func (s *DefaultAvailabilityService) GetMasterAvailability(ctx context.Context, masterID string, days int) (*models.MasterAvailability, error) {
	m, err := s.master(masterID)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultAvailableDays
	}
	if days > maxAvailableDays {
		days = maxAvailableDays
	}

	now := s.Clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := &models.MasterAvailability{MasterID: m.ID, MasterName: m.Name}

	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i)
		date := day.Format(models.DateLayout)
		occupied, err := s.Ledger.ListOccupied(ctx, masterID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to list occupied slots for %s: %w", date, err)
		}
		free := subtract(s.Grid.Times(date), occupied)
		if i == 0 {
			free = laterThan(free, now.Format(models.TimeLayout))
		}
		out.Days = append(out.Days, models.DayAvailability{
			Date:           date,
			Weekday:        day.Weekday().String(),
			Available:      len(free) > 0,
			AvailableSlots: free,
		})
		if out.NextAvailable == "" && len(free) > 0 {
			out.NextAvailable = date
		}
	}
	return out, nil
}

// Alternatives offers up to three later free times on the same day, or failing
// that up to three dates within the next week free at the same time.
func (s *DefaultAvailabilityService) Alternatives(ctx context.Context, masterID, date, at string) (models.Alternatives, error) {
	var alts models.Alternatives
	day, err := models.ParseDate(date)
	if err != nil {
		return alts, newBookingError(ErrInvalidRequest, fmt.Sprintf("invalid date %q", date), err)
	}

	occupied, err := s.Ledger.ListOccupied(ctx, masterID, date)
	if err != nil {
		return alts, fmt.Errorf("failed to list occupied slots: %w", err)
	}
	for _, t := range laterThan(subtract(s.Grid.Times(date), occupied), at) {
		if len(alts.Times) == maxAlternatives {
			break
		}
		alts.Times = append(alts.Times, t)
	}
	if len(alts.Times) > 0 {
		return alts, nil
	}

	for i := 1; i <= alternativeDateRange && len(alts.Dates) < maxAlternatives; i++ {
		next := day.AddDate(0, 0, i).Format(models.DateLayout)
		if !s.Grid.Contains(next, at) {
			continue
		}
		free, err := s.Ledger.IsFree(ctx, masterID, next, at)
		if err != nil {
			return alts, fmt.Errorf("failed to check slot %s %s: %w", next, at, err)
		}
		if free {
			alts.Dates = append(alts.Dates, next)
		}
	}
	return alts, nil
}

func subtract(all, taken []string) []string {
	busy := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		busy[t] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, t := range all {
		if _, ok := busy[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// laterThan keeps times strictly after at; "HH:MM" strings order lexically.
func laterThan(times []string, at string) []string {
	out := make([]string, 0, len(times))
	for _, t := range times {
		if t > at {
			out = append(out, t)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
