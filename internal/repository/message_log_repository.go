package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/queue-service/internal/domain"
)

// MessageLogRepository records notification attempts. Write-only audit trail;
// a failed write never fails the triggering ticket operation.
type MessageLogRepository interface {
	Create(ctx context.Context, log *domain.MessageLog) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.MessageLog, error)
}

type messageLogRepository struct {
	pool *pgxpool.Pool
}

// NewMessageLogRepository instantiates the repository.
func NewMessageLogRepository(pool *pgxpool.Pool) MessageLogRepository {
	return &messageLogRepository{pool: pool}
}

func (r *messageLogRepository) Create(ctx context.Context, log *domain.MessageLog) error {
	const query = `
        INSERT INTO message_logs (ticket_id, message_type, content)
        VALUES ($1, $2, $3)
        RETURNING id, sent_at`
	return r.pool.QueryRow(ctx, query,
		log.TicketID,
		log.MessageType,
		log.Content,
	).Scan(&log.ID, &log.SentAt)
}

func (r *messageLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.MessageLog, error) {
	const query = `
        SELECT id, ticket_id, message_type, content, sent_at
        FROM message_logs
        WHERE ticket_id=$1
        ORDER BY sent_at ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MessageLog
	for rows.Next() {
		var entry domain.MessageLog
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.MessageType,
			&entry.Content,
			&entry.SentAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
