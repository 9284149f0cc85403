// File: models/records.go
package models

import (
	"sort"
	"time"
)

// VisitStatus is the terminal outcome recorded in visit history.
type VisitStatus string

const (
	VisitCompleted VisitStatus = "completed"
	VisitCancelled VisitStatus = "cancelled"
)

// VisitHistoryRecord is an append-only record of a terminal visit outcome.
type VisitHistoryRecord struct {
	ID         string      `bson:"id" json:"id"`
	MasterID   string      `bson:"masterId" json:"masterId"`
	ClientID   string      `bson:"clientId" json:"clientId"`
	ClientName string      `bson:"clientName" json:"clientName"`
	Date       string      `bson:"date" json:"date"`
	Time       string      `bson:"time" json:"time"`
	Status     VisitStatus `bson:"status" json:"status"`
	RecordedAt time.Time   `bson:"recordedAt" json:"recordedAt"`
}

// VisitKey is the identity used to collapse retried appends.
type VisitKey struct {
	MasterID string
	ClientID string
	Date     string
	Time     string
	Status   VisitStatus
}

// Key returns the de-duplication key of the record.
func (r VisitHistoryRecord) Key() VisitKey {
	return VisitKey{MasterID: r.MasterID, ClientID: r.ClientID, Date: r.Date, Time: r.Time, Status: r.Status}
}

// DedupVisits drops repeated appends of the same visit, keeping the first
// occurrence, and orders the result by date then time.
func DedupVisits(records []VisitHistoryRecord) []VisitHistoryRecord {
	seen := make(map[VisitKey]struct{}, len(records))
	out := make([]VisitHistoryRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}
