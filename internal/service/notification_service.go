package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/notify"
	"github.com/spec-kit/queue-service/internal/repository"
)

// NotificationService delivers best-effort messages on ticket transitions and
// records them in the message log. Every failure here is logged and swallowed;
// the triggering ticket operation has already committed.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     notify.Mailer
	logs       repository.MessageLogRepository
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer notify.Mailer, logs repository.MessageLogRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logs:       logs,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketEnqueued, n.handleEnqueued)
	n.dispatcher.Subscribe(events.EventTicketCalled, n.handleCalled)
	n.dispatcher.Subscribe(events.EventTicketCancelled, n.handleCancelled)
}

func (n *NotificationService) handleEnqueued(ctx context.Context, event events.Event) error {
	content := fmt.Sprintf("You have been added to the queue. Ticket %s in queue %s.", event.TicketID, event.QueueID)
	n.deliver(ctx, event, domain.MessageTypeEntry, "Queue entry confirmed", content)
	return nil
}

func (n *NotificationService) handleCalled(ctx context.Context, event events.Event) error {
	content := fmt.Sprintf("You are now being served. Ticket %s in queue %s.", event.TicketID, event.QueueID)
	n.deliver(ctx, event, domain.MessageTypeCall, "It is your turn", content)
	return nil
}

func (n *NotificationService) handleCancelled(ctx context.Context, event events.Event) error {
	content := fmt.Sprintf("Your queue entry was cancelled. Ticket %s in queue %s.", event.TicketID, event.QueueID)
	n.deliver(ctx, event, domain.MessageTypeCancel, "Queue entry cancelled", content)
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event, msgType domain.MessageType, subject, content string) {
	if err := n.mailer.Send(ctx, event.Phone, subject, content); err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("message_type", string(msgType)),
			zap.Error(err))
	}

	if n.logs == nil {
		return
	}
	entry := &domain.MessageLog{
		TicketID:    event.TicketID,
		MessageType: msgType,
		Content:     content,
	}
	if err := n.logs.Create(ctx, entry); err != nil {
		n.logger.Warn("message log write failed",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
}
