package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/queue-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Tickets are never deleted
// directly; they leave circulation only by status transition or queue cascade.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByQueue(ctx context.Context, queueID string) ([]domain.Ticket, error)
	// NextWaiting returns the oldest waiting ticket in the queue, FIFO order
	// by (created_at, id). pgx.ErrNoRows when the queue has none.
	NextWaiting(ctx context.Context, queueID string) (*domain.Ticket, error)
	// ClaimCalled transitions a ticket to called and assigns the attendant,
	// only if the ticket is still waiting. Returns false on a lost race.
	ClaimCalled(ctx context.Context, ticketID, attendantID string) (bool, error)
	// TransitionStatus flips a ticket's status only if it still holds the
	// expected current status. Returns false when the guard fails.
	TransitionStatus(ctx context.Context, ticketID string, from, to domain.TicketStatus) (bool, error)
	// CancelWaitingBefore cancels waiting tickets created before the cutoff.
	CancelWaitingBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// ListWaitingBefore returns waiting tickets created before the cutoff.
	ListWaitingBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, queue_id, phone, status, attendant_id, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (queue_id, phone, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.QueueID,
		ticket.Phone,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) NextWaiting(ctx context.Context, queueID string) (*domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM tickets
        WHERE queue_id=$1 AND status=$2
        ORDER BY created_at ASC, id ASC
        LIMIT 1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, queueID, domain.TicketStatusWaiting).Scan(
		&ticket.ID,
		&ticket.QueueID,
		&ticket.Phone,
		&ticket.Status,
		&ticket.AttendantID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ClaimCalled(ctx context.Context, ticketID, attendantID string) (bool, error) {
	const query = `
        UPDATE tickets
        SET status=$1, attendant_id=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query,
		domain.TicketStatusCalled, attendantID, ticketID, domain.TicketStatusWaiting)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ticketRepository) TransitionStatus(ctx context.Context, ticketID string, from, to domain.TicketStatus) (bool, error) {
	const query = `
        UPDATE tickets
        SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, to, ticketID, from)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ticketRepository) ListByQueue(ctx context.Context, queueID string) ([]domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM tickets
        WHERE queue_id=$1
        ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, queueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CancelWaitingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
        UPDATE tickets
        SET status=$1, updated_at=NOW()
        WHERE status=$2 AND created_at < $3`
	cmd, err := r.pool.Exec(ctx, query,
		domain.TicketStatusCancelled, domain.TicketStatusWaiting, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) ListWaitingBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM tickets
        WHERE status=$1 AND created_at < $2
        ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, domain.TicketStatusWaiting, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.QueueID,
		&ticket.Phone,
		&ticket.Status,
		&ticket.AttendantID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.QueueID,
			&ticket.Phone,
			&ticket.Status,
			&ticket.AttendantID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
