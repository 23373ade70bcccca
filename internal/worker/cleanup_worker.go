package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/repository"
)

// CleanupWorker cancels waiting tickets that have sat in a queue longer than
// the configured maximum age. Terminal tickets are never touched.
type CleanupWorker struct {
	tickets  repository.TicketRepository
	interval time.Duration
	maxAge   time.Duration
	logger   *zap.Logger
}

// NewCleanupWorker constructs the worker.
func NewCleanupWorker(tickets repository.TicketRepository, interval, maxAge time.Duration, logger *zap.Logger) *CleanupWorker {
	return &CleanupWorker{tickets: tickets, interval: interval, maxAge: maxAge, logger: logger}
}

// Run loops until the context is cancelled.
func (w *CleanupWorker) Run(ctx context.Context) {
	if w.interval <= 0 || w.maxAge <= 0 {
		w.logger.Info("cleanup worker disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CleanupWorker) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.maxAge)
	cancelled, err := w.tickets.CancelWaitingBefore(ctx, cutoff)
	if err != nil {
		w.logger.Warn("cleanup sweep failed", zap.Error(err))
		return
	}
	if cancelled > 0 {
		w.logger.Info("cancelled stale waiting tickets", zap.Int64("count", cancelled))
	}
}
