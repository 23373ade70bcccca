package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/notify"
	"github.com/spec-kit/queue-service/internal/repository"
)

// ReminderWorker periodically emails tickets that are still waiting. Delivery
// is best-effort; failures are logged per ticket and the sweep continues.
type ReminderWorker struct {
	tickets  repository.TicketRepository
	mailer   notify.Mailer
	interval time.Duration
	logger   *zap.Logger
}

// NewReminderWorker constructs the worker.
func NewReminderWorker(tickets repository.TicketRepository, mailer notify.Mailer, interval time.Duration, logger *zap.Logger) *ReminderWorker {
	return &ReminderWorker{tickets: tickets, mailer: mailer, interval: interval, logger: logger}
}

// Run loops until the context is cancelled.
func (w *ReminderWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("reminder worker disabled")
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

func (w *ReminderWorker) sweep(ctx context.Context) {
	waiting, err := w.tickets.ListWaitingBefore(ctx, time.Now())
	if err != nil {
		w.logger.Warn("reminder sweep failed", zap.Error(err))
		return
	}

	for _, ticket := range waiting {
		content := fmt.Sprintf("Reminder: you are still in the queue. Ticket %s.", ticket.ID)
		if err := w.mailer.Send(ctx, ticket.Phone, "Queue reminder", content); err != nil {
			w.logger.Warn("reminder delivery failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}
}
