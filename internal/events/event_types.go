package events

import (
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketEnqueued  EventType = "ticket_enqueued"
	EventTicketCalled    EventType = "ticket_called"
	EventTicketCancelled EventType = "ticket_cancelled"
	EventTicketServed    EventType = "ticket_served"
)

// Event represents a domain event emitted after a ticket transition commits.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	QueueID   string      `json:"queue_id"`
	Phone     string      `json:"phone"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// TicketCalledPayload payload.
type TicketCalledPayload struct {
	AttendantID string `json:"attendant_id"`
}

// TicketCancelledPayload payload.
type TicketCancelledPayload struct {
	PreviousStatus domain.TicketStatus `json:"previous_status"`
	CancelledByID  string              `json:"cancelled_by_id"`
}
