package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"salonbook/models"
)

const (
	TypeReconcileSweep = "ledger:reconcile"
	TypeBookingEvent   = "booking:event"
)

// NewReconcileTask builds the periodic sweep task. Only one sweep may be queued at a time.
func NewReconcileTask(interval time.Duration) (*asynq.Task, []asynq.Option) {
	task := asynq.NewTask(TypeReconcileSweep, nil)
	opts := []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Timeout(interval),
		asynq.Unique(interval),
	}
	return task, opts
}

func NewBookingEventTask(event models.BookingEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingEvent, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

func ParseBookingEvent(task *asynq.Task) (models.BookingEvent, error) {
	var event models.BookingEvent
	err := json.Unmarshal(task.Payload(), &event)
	return event, err
}
