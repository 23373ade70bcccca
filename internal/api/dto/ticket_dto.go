package dto

import (
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
)

// EnqueueRequest adds a phone number to a queue.
type EnqueueRequest struct {
	QueueID string `json:"queue_id"`
	Phone   string `json:"phone"`
}

// CallNextRequest claims the next waiting ticket in a queue.
type CallNextRequest struct {
	QueueID string `json:"queue_id"`
}

// TicketResponse is the public ticket representation.
type TicketResponse struct {
	ID          string    `json:"id"`
	QueueID     string    `json:"queue_id"`
	Phone       string    `json:"phone"`
	Status      string    `json:"status"`
	AttendantID *string   `json:"attendant_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MessageLogResponse is one notification audit record for a ticket.
type MessageLogResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	MessageType string    `json:"message_type"`
	Content     string    `json:"content"`
	SentAt      time.Time `json:"sent_at"`
}

// NewMessageLogResponse maps a message log entry.
func NewMessageLogResponse(log *domain.MessageLog) MessageLogResponse {
	return MessageLogResponse{
		ID:          log.ID,
		TicketID:    log.TicketID,
		MessageType: string(log.MessageType),
		Content:     log.Content,
		SentAt:      log.SentAt,
	}
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		QueueID:     ticket.QueueID,
		Phone:       ticket.Phone,
		Status:      string(ticket.Status),
		AttendantID: ticket.AttendantID,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
