package models

import "time"

// BookingEventType names a booking lifecycle event.
type BookingEventType string

const (
	EventBookingCreated   BookingEventType = "booking.created"
	EventBookingCancelled BookingEventType = "booking.cancelled"
	EventBookingCompleted BookingEventType = "booking.completed"
)

// BookingEvent is emitted by the orchestrator after a flow succeeds.
type BookingEvent struct {
	Type       BookingEventType `json:"type"`
	BookingID  string           `json:"bookingId"`
	UserID     string           `json:"userId"`
	MasterID   string           `json:"masterId"`
	Date       string           `json:"date"`
	Time       string           `json:"time"`
	Initiator  Role             `json:"initiator,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// SyncMessage is one entry in a user's sync inbox.
type SyncMessage struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
}
