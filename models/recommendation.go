package models

// Recommendation is a derived, non-persisted suggestion for the next visit.
type Recommendation struct {
	UserID     string `json:"userId"`
	MasterID   string `json:"masterId"`
	MasterName string `json:"masterName"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Message    string `json:"message"`
}
