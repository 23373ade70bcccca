package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// claimAttempts bounds re-selection after a lost claim race.
const claimAttempts = 3

// TicketService owns the ticket state machine: enqueue, call-next, cancel,
// serve and stats. Transitions commit against the store before any event is
// published, so notification work can never roll a ticket back.
type TicketService struct {
	tickets     repository.TicketRepository
	queues      repository.QueueRepository
	callBoard   repository.CallBoardRepository
	messageLogs repository.MessageLogRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	QueueRepo      repository.QueueRepository
	CallBoard      repository.CallBoardRepository
	MessageLogRepo repository.MessageLogRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		queues:      deps.QueueRepo,
		callBoard:   deps.CallBoard,
		messageLogs: deps.MessageLogRepo,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// Enqueue appends a waiting ticket to the queue's FIFO tail.
func (s *TicketService) Enqueue(ctx context.Context, queueID, phone string) (*domain.Ticket, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, apperrors.NewValidationError("phone required", nil)
	}

	if _, err := s.queues.GetByID(ctx, queueID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("queue", map[string]any{"queue_id": queueID})
		}
		return nil, err
	}

	ticket := &domain.Ticket{
		QueueID: queueID,
		Phone:   phone,
		Status:  domain.TicketStatusWaiting,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(events.Event{
		Type:     events.EventTicketEnqueued,
		TicketID: ticket.ID,
		QueueID:  ticket.QueueID,
		Phone:    ticket.Phone,
	})
	return ticket, nil
}

// CallNext claims the oldest waiting ticket in the queue for the attendant.
// Selection and transition are one atomic unit: the claim is a conditional
// update guarded on the ticket still being in waiting, and a lost race
// re-selects rather than erroring the caller.
func (s *TicketService) CallNext(ctx context.Context, queueID, attendantID string) (*domain.Ticket, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		candidate, err := s.tickets.NextWaiting(ctx, queueID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewEmptyQueue(queueID)
			}
			return nil, err
		}

		claimed, err := s.tickets.ClaimCalled(ctx, candidate.ID, attendantID)
		if err != nil {
			return nil, err
		}
		if !claimed {
			// another attendant won this ticket; try the next one
			continue
		}

		candidate.Status = domain.TicketStatusCalled
		candidate.AttendantID = &attendantID
		candidate.UpdatedAt = time.Now()

		s.recordCallBoard(ctx, candidate, attendantID)
		s.publish(events.Event{
			Type:     events.EventTicketCalled,
			TicketID: candidate.ID,
			QueueID:  candidate.QueueID,
			Phone:    candidate.Phone,
			Payload:  events.TicketCalledPayload{AttendantID: attendantID},
		})
		return candidate, nil
	}
	return nil, apperrors.NewStoreUnavailable(errors.New("call-next contention exhausted retries"))
}

// Cancel moves a ticket to cancelled. Only the assigned attendant or an admin
// may cancel; terminal tickets are rejected with their status unchanged.
func (s *TicketService) Cancel(ctx context.Context, requester *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.resolve(ctx, requester, ticketID, domain.TicketStatusCancelled, events.EventTicketCancelled)
}

// MarkServed moves a ticket from called to served, closing it out.
func (s *TicketService) MarkServed(ctx context.Context, requester *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.resolve(ctx, requester, ticketID, domain.TicketStatusServed, events.EventTicketServed)
}

func (s *TicketService) resolve(ctx context.Context, requester *domain.User, ticketID string, target domain.TicketStatus, eventType events.EventType) (*domain.Ticket, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		ticket, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return nil, err
		}
		if !ticket.CanResolve(requester) {
			return nil, apperrors.NewForbidden("not assigned attendant or admin")
		}
		if !domain.ValidTransition(ticket.Status, target) {
			return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(target))
		}

		ok, err := s.tickets.TransitionStatus(ctx, ticket.ID, ticket.Status, target)
		if err != nil {
			return nil, err
		}
		if !ok {
			// status moved under us; re-read and re-validate
			continue
		}

		previous := ticket.Status
		ticket.Status = target
		ticket.UpdatedAt = time.Now()

		event := events.Event{
			Type:     eventType,
			TicketID: ticket.ID,
			QueueID:  ticket.QueueID,
			Phone:    ticket.Phone,
		}
		if eventType == events.EventTicketCancelled {
			event.Payload = events.TicketCancelledPayload{
				PreviousStatus: previous,
				CancelledByID:  requester.ID,
			}
		}
		s.publish(event)
		return ticket, nil
	}
	return nil, apperrors.NewStoreUnavailable(errors.New("ticket transition exhausted retries"))
}

// Stats tallies the queue's tickets by status, computed fresh from ticket
// rows at read time.
func (s *TicketService) Stats(ctx context.Context, queueID string) (domain.StatusTally, error) {
	if _, err := s.queues.GetByID(ctx, queueID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StatusTally{}, apperrors.NewNotFound("queue", map[string]any{"queue_id": queueID})
		}
		return domain.StatusTally{}, err
	}

	tickets, err := s.tickets.ListByQueue(ctx, queueID)
	if err != nil {
		return domain.StatusTally{}, err
	}
	return domain.TallyStatuses(tickets), nil
}

// ListByQueue returns the queue's tickets in FIFO order.
func (s *TicketService) ListByQueue(ctx context.Context, queueID string) ([]domain.Ticket, error) {
	if _, err := s.queues.GetByID(ctx, queueID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("queue", map[string]any{"queue_id": queueID})
		}
		return nil, err
	}
	return s.tickets.ListByQueue(ctx, queueID)
}

// MessageHistory returns the notification audit trail for a ticket, oldest
// first.
func (s *TicketService) MessageHistory(ctx context.Context, ticketID string) ([]domain.MessageLog, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	if s.messageLogs == nil {
		return nil, nil
	}
	return s.messageLogs.ListByTicket(ctx, ticketID)
}

// LastCalled returns the call-board entry for a queue, or nil when none.
func (s *TicketService) LastCalled(ctx context.Context, queueID string) *repository.CallBoardEntry {
	if s.callBoard == nil {
		return nil
	}
	entry, err := s.callBoard.GetLastCalled(ctx, queueID)
	if err != nil {
		s.logger.Warn("call board read failed", zap.String("queue_id", queueID), zap.Error(err))
		return nil
	}
	return entry
}

func (s *TicketService) recordCallBoard(ctx context.Context, ticket *domain.Ticket, attendantID string) {
	if s.callBoard == nil {
		return
	}
	entry := repository.CallBoardEntry{
		TicketID:    ticket.ID,
		Phone:       ticket.Phone,
		AttendantID: attendantID,
		CalledAt:    time.Now(),
	}
	if err := s.callBoard.SetLastCalled(ctx, ticket.QueueID, entry); err != nil {
		s.logger.Warn("call board write failed",
			zap.String("queue_id", ticket.QueueID), zap.Error(err))
	}
}

func (s *TicketService) publish(event events.Event) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(event)
}
