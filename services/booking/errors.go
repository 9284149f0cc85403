package booking

import (
	"errors"
	"fmt"

	"salonbook/models"
)

// Sentinels for the booking error taxonomy. Every *BookingError unwraps to one of them.
var (
	ErrSlotUnavailable     = errors.New("slot unavailable")
	ErrBookingCreateFailed = errors.New("booking create failed")
	ErrAlreadyTerminal     = errors.New("booking already terminal")
	ErrNotFound            = errors.New("booking not found")
	ErrCompensationFailed  = errors.New("compensation failed")
	ErrInvalidSlot         = errors.New("invalid slot")
	ErrInvalidRequest      = errors.New("invalid request")
)

// Error codes exposed to API callers.
const (
	CodeSlotUnavailable     = "slot_unavailable"
	CodeBookingCreateFailed = "booking_create_failed"
	CodeAlreadyTerminal     = "already_terminal"
	CodeNotFound            = "not_found"
	CodeCompensationFailed  = "compensation_failed"
	CodeInvalidSlot         = "invalid_slot"
	CodeInvalidRequest      = "invalid_request"
)

var codes = map[error]string{
	ErrSlotUnavailable:     CodeSlotUnavailable,
	ErrBookingCreateFailed: CodeBookingCreateFailed,
	ErrAlreadyTerminal:     CodeAlreadyTerminal,
	ErrNotFound:            CodeNotFound,
	ErrCompensationFailed:  CodeCompensationFailed,
	ErrInvalidSlot:         CodeInvalidSlot,
	ErrInvalidRequest:      CodeInvalidRequest,
}

// BookingError carries a stable code, a caller-facing message and the cause.
type BookingError struct {
	Code    string
	Message string
	Kind    error
	Err     error

	// Alternatives is set on slot_unavailable when free options were found.
	Alternatives *models.Alternatives
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause.
func (e *BookingError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newBookingError(kind error, msg string, cause error) *BookingError {
	return &BookingError{
		Code:    codes[kind],
		Message: msg,
		Kind:    kind,
		Err:     cause,
	}
}

// CodeOf returns the API code for err, or "" when err is outside the taxonomy.
func CodeOf(err error) string {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Code
	}
	for kind, code := range codes {
		if errors.Is(err, kind) {
			return code
		}
	}
	return ""
}
