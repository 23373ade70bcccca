package dto

import (
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
)

// CreateQueueRequest opens a new queue.
type CreateQueueRequest struct {
	Name string `json:"name"`
}

// UpdateQueueRequest mutates name and active flag.
type UpdateQueueRequest struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// QueueResponse is the public queue representation.
type QueueResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewQueueResponse maps a domain queue.
func NewQueueResponse(queue *domain.Queue) QueueResponse {
	return QueueResponse{
		ID:        queue.ID,
		Name:      queue.Name,
		CreatedBy: queue.CreatedBy,
		Active:    queue.Active,
		CreatedAt: queue.CreatedAt,
	}
}

// DashboardQueue combines a queue with its tally and call-board entry.
type DashboardQueue struct {
	Queue      QueueResponse      `json:"queue"`
	Stats      domain.StatusTally `json:"stats"`
	NowServing *NowServing        `json:"now_serving,omitempty"`
}

// NowServing is the most recently called ticket for a queue.
type NowServing struct {
	TicketID    string    `json:"ticket_id"`
	Phone       string    `json:"phone"`
	AttendantID string    `json:"attendant_id"`
	CalledAt    time.Time `json:"called_at"`
}
