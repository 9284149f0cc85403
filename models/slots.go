package models

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format of a slot date, e.g. "2024-06-10".
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format of a slot time, e.g. "14:00".
	TimeLayout = "15:04"
)

// ScheduleEntry is one occupied cell of a master's calendar.
type ScheduleEntry struct {
	MasterID   string    `bson:"masterId" json:"masterId"`
	Date       string    `bson:"date" json:"date"`
	Time       string    `bson:"time" json:"time"`
	Occupant   string    `bson:"occupant" json:"occupant"`
	ReservedAt time.Time `bson:"reservedAt" json:"reservedAt"`
}

// SlotKey identifies a bookable (master, date, time) unit.
type SlotKey struct {
	MasterID string `json:"masterId"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.MasterID, k.Date, k.Time)
}

// SlotGrid is the fixed daily grid of hourly slots, open on WorkingDays only.
type SlotGrid struct {
	StartHour   int            `json:"startHour"`
	EndHour     int            `json:"endHour"` // inclusive: the last slot starts at EndHour:00
	WorkingDays []time.Weekday `json:"workingDays"`
}

// DefaultSlotGrid is 10:00–17:00, Monday to Friday.
func DefaultSlotGrid() SlotGrid {
	return SlotGrid{
		StartHour:   10,
		EndHour:     17,
		WorkingDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}
}

// NewSlotGrid builds a grid from config values; weekdays use time.Weekday numbering.
func NewSlotGrid(startHour, endHour int, workingDays []int) SlotGrid {
	grid := SlotGrid{StartHour: startHour, EndHour: endHour}
	for _, d := range workingDays {
		grid.WorkingDays = append(grid.WorkingDays, time.Weekday(d%7))
	}
	return grid
}

// IsOpen reports whether the salon works on the given date.
func (g SlotGrid) IsOpen(date time.Time) bool {
	for _, d := range g.WorkingDays {
		if date.Weekday() == d {
			return true
		}
	}
	return false
}

// Times returns every slot time of the day, or nil when closed or unparsable.
func (g SlotGrid) Times(date string) []string {
	d, err := ParseDate(date)
	if err != nil || !g.IsOpen(d) {
		return nil
	}
	times := make([]string, 0, g.EndHour-g.StartHour+1)
	for h := g.StartHour; h <= g.EndHour; h++ {
		times = append(times, fmt.Sprintf("%02d:00", h))
	}
	return times
}

// Contains reports whether (date, time) is a bookable cell of the grid.
func (g SlotGrid) Contains(date, clock string) bool {
	for _, t := range g.Times(date) {
		if t == clock {
			return true
		}
	}
	return false
}

// ParseDate parses a "YYYY-MM-DD" date in UTC.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// ParseSlotTime parses an "HH:MM" time.
func ParseSlotTime(clock string) (time.Time, error) {
	return time.Parse(TimeLayout, clock)
}

// DaySchedule is the full view of one master's day.
type DaySchedule struct {
	MasterID   string   `json:"masterId"`
	MasterName string   `json:"masterName"`
	Date       string   `json:"date"`
	AllSlots   []string `json:"allSlots"`
	Booked     []string `json:"bookedTimes"`
	Available  []string `json:"availableTimes"`
}

// DayAvailability summarises one date in a multi-day availability view.
type DayAvailability struct {
	Date           string   `json:"date"`
	Weekday        string   `json:"weekday"`
	Available      bool     `json:"available"`
	AvailableSlots []string `json:"availableSlots"`
}

// MasterAvailability is a master's availability over the next few days.
type MasterAvailability struct {
	MasterID      string            `json:"masterId"`
	MasterName    string            `json:"masterName"`
	Days          []DayAvailability `json:"days"`
	NextAvailable string            `json:"nextAvailable,omitempty"`
}

// Alternatives are offered when a requested slot is already taken.
type Alternatives struct {
	Times []string `json:"alternativeTimes,omitempty"`
	Dates []string `json:"alternativeDates,omitempty"`
}

// Empty reports whether no alternative was found.
func (a Alternatives) Empty() bool {
	return len(a.Times) == 0 && len(a.Dates) == 0
}
