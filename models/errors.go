package models

import "errors"

// Repository-level sentinel errors shared by every store implementation.
var (
	ErrSlotTaken         = errors.New("slot already taken")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)
