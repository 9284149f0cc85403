package models

import "time"

// BookingStatus is the lifecycle status of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no further transition is permitted.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo reports whether s -> next is allowed.
// Only pending -> completed and pending -> cancelled are valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == BookingStatusPending && next.IsTerminal()
}

// Booking represents a canonical booking record.
type Booking struct {
	ID        string        `bson:"id" json:"id"`             // Unique booking identifier (UUID)
	UserID    string        `bson:"userId" json:"userId"`     // Client who made the booking
	MasterID  string        `bson:"masterId" json:"masterId"` // Master who was booked
	Date      string        `bson:"date" json:"date"`         // "YYYY-MM-DD"
	Time      string        `bson:"time" json:"time"`         // "HH:MM"
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
	Status    BookingStatus `bson:"status" json:"status"`
}

// Slot returns the slot the booking occupies.
func (b Booking) Slot() SlotKey {
	return SlotKey{MasterID: b.MasterID, Date: b.Date, Time: b.Time}
}

// BookingRequest is the input of the create flow.
type BookingRequest struct {
	UserID   string `json:"userId"`
	MasterID string `json:"masterId" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
}

// CancelMode selects how the booking record is retired on cancel.
type CancelMode string

const (
	// CancelByStatus keeps the record and moves it to cancelled (session flow).
	CancelByStatus CancelMode = "status"
	// CancelByDelete removes the record (confirmation flow).
	CancelByDelete CancelMode = "delete"
)

// CancelRequest is the input of the cancel flow.
type CancelRequest struct {
	BookingID string     `json:"bookingId"`
	MasterID  string     `json:"masterId" binding:"required"`
	Date      string     `json:"date" binding:"required"`
	Time      string     `json:"time" binding:"required"`
	Initiator Role       `json:"initiator"`
	Mode      CancelMode `json:"mode"`
}

// CompleteRequest is the input of the complete flow.
type CompleteRequest struct {
	BookingID  string `json:"bookingId"`
	MasterID   string `json:"masterId" binding:"required"`
	ClientID   string `json:"clientId" binding:"required"`
	ClientName string `json:"clientName"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	Actor      Role   `json:"actor"`
}
