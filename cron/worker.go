package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"salonbook/models"
	"salonbook/services/reconcile"
	"salonbook/services/tasks"
)

// Sweeper runs one reconcile pass.
type Sweeper interface {
	Sweep(ctx context.Context) (reconcile.Report, error)
}

// EventDispatcher delivers one booking event.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event models.BookingEvent) error
}

// Worker processes booking events and runs the periodic reconcile sweep.
type Worker struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	interval  time.Duration
	logger    *zap.Logger
}

func NewWorker(redisOpts asynq.RedisConnOpt, sweeper Sweeper, dispatcher EventDispatcher, interval time.Duration, logger *zap.Logger) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})

	return &Worker{
		srv:       srv,
		scheduler: scheduler,
		mux:       NewServeMux(sweeper, dispatcher, logger),
		interval:  interval,
		logger:    logger,
	}
}

// NewServeMux wires task handlers by type.
func NewServeMux(sweeper Sweeper, dispatcher EventDispatcher, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReconcileSweep, handleReconcileTask(sweeper, logger))
	mux.HandleFunc(tasks.TypeBookingEvent, handleBookingEventTask(dispatcher, logger))
	return mux
}

// Start registers the periodic sweep and starts both the scheduler and the worker.
func (w *Worker) Start() error {
	task, opts := tasks.NewReconcileTask(w.interval)
	entryID, err := w.scheduler.Register(fmt.Sprintf("@every %s", w.interval), task, opts...)
	if err != nil {
		return fmt.Errorf("failed to register reconcile schedule: %w", err)
	}
	w.logger.Info("reconcile sweep scheduled", zap.String("entry_id", entryID), zap.Duration("interval", w.interval))

	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	if err := w.srv.Start(w.mux); err != nil {
		w.scheduler.Shutdown()
		return fmt.Errorf("failed to start worker: %w", err)
	}
	w.logger.Info("background worker started")
	return nil
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.srv.Shutdown()
	w.logger.Info("background worker stopped")
}

func handleReconcileTask(sweeper Sweeper, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		report, err := sweeper.Sweep(ctx)
		if err != nil {
			logger.Error("reconcile sweep failed", zap.Error(err))
			return err
		}
		logger.Debug("reconcile sweep done", zap.Int("scanned", report.Scanned), zap.Int("released", report.Released))
		return nil
	}
}

func handleBookingEventTask(dispatcher EventDispatcher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		event, err := tasks.ParseBookingEvent(task)
		if err != nil {
			logger.Error("invalid booking event payload", zap.Error(err))
			// Retrying cannot fix a malformed payload.
			return fmt.Errorf("invalid booking event payload: %v: %w", err, asynq.SkipRetry)
		}
		if err := dispatcher.Dispatch(ctx, event); err != nil {
			logger.Warn("booking event dispatch failed", zap.String("booking_id", event.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}
