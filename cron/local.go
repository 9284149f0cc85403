package cron

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunLocal sweeps every interval in process until ctx is done. It stands in
// for the asynq scheduler when no Redis queue is configured.
func RunLocal(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	handle := handleReconcileTask(sweeper, logger)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Errors are already logged by the handler.
			_ = handle(ctx, nil)
		}
	}
}
