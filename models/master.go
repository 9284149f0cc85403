package models

// Master is a salon specialist. Immutable for booking purposes.
type Master struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
