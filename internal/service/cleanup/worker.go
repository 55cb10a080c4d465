package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/iamasit07/soundboard-dashboard/internal/logging"
)

const DefaultInterval = time.Hour

// Pruner deletes ended logins older than the given number of days.
type Pruner interface {
	CleanupOld(ctx context.Context, olderThanDays int) (int64, error)
}

type Worker struct {
	pruner   Pruner
	keepDays int
	interval time.Duration
	logger   *slog.Logger
}

func NewWorker(pruner Pruner, keepDays int, logger *slog.Logger) *Worker {
	return &Worker{
		pruner:   pruner,
		keepDays: keepDays,
		interval: DefaultInterval,
		logger:   logging.Component(logger, "cleanup"),
	}
}

// Start runs one cleanup immediately and then one per interval until ctx
// is done. The returned channel closes when the worker has stopped.
func (w *Worker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		w.runCleanup(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("cleanup worker stopped")
				return
			case <-ticker.C:
				w.runCleanup(ctx)
			}
		}
	}()
	w.logger.Info("cleanup worker started", "interval", w.interval, "keep_days", w.keepDays)
	return done
}

func (w *Worker) runCleanup(ctx context.Context) {
	deleted, err := w.pruner.CleanupOld(ctx, w.keepDays)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("login history cleanup failed", "error", err)
		}
		return
	}
	if deleted > 0 {
		w.logger.Info("removed old logins", "count", deleted)
	}
}
