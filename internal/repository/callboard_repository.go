package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CallBoardEntry is the "now serving" record displayed per queue. Best-effort
// cache only; ticket rows in Postgres remain the source of truth.
type CallBoardEntry struct {
	TicketID    string    `json:"ticket_id"`
	Phone       string    `json:"phone"`
	AttendantID string    `json:"attendant_id"`
	CalledAt    time.Time `json:"called_at"`
}

// CallBoardRepository stores the most recently called ticket per queue.
type CallBoardRepository interface {
	SetLastCalled(ctx context.Context, queueID string, entry CallBoardEntry) error
	GetLastCalled(ctx context.Context, queueID string) (*CallBoardEntry, error)
}

type callBoardRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCallBoardRepository returns a Redis-backed implementation.
func NewCallBoardRepository(client *redis.Client) CallBoardRepository {
	return &callBoardRepository{client: client, ttl: 24 * time.Hour}
}

func callBoardKey(queueID string) string {
	return "callboard:" + queueID
}

func (r *callBoardRepository) SetLastCalled(ctx context.Context, queueID string, entry CallBoardEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, callBoardKey(queueID), payload, r.ttl).Err()
}

// GetLastCalled returns nil without error when no entry is cached.
func (r *callBoardRepository) GetLastCalled(ctx context.Context, queueID string) (*CallBoardEntry, error) {
	payload, err := r.client.Get(ctx, callBoardKey(queueID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry CallBoardEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
