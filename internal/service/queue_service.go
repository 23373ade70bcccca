package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// QueueService coordinates queue CRUD with ownership checks.
type QueueService struct {
	queues repository.QueueRepository
}

// NewQueueService constructs the service.
func NewQueueService(queues repository.QueueRepository) *QueueService {
	return &QueueService{queues: queues}
}

// Create opens a new active queue owned by the caller.
func (s *QueueService) Create(ctx context.Context, owner *domain.User, name string) (*domain.Queue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("queue name required", nil)
	}

	queue := &domain.Queue{
		Name:      name,
		CreatedBy: owner.ID,
		Active:    true,
	}
	if err := s.queues.Create(ctx, queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// List returns all queues.
func (s *QueueService) List(ctx context.Context) ([]domain.Queue, error) {
	return s.queues.List(ctx)
}

// Get fetches one queue by id.
func (s *QueueService) Get(ctx context.Context, queueID string) (*domain.Queue, error) {
	queue, err := s.queues.GetByID(ctx, queueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("queue", map[string]any{"queue_id": queueID})
		}
		return nil, err
	}
	return queue, nil
}

// UpdateInput carries the mutable queue fields.
type UpdateInput struct {
	Name   string
	Active bool
}

// Update mutates name and active flag; owner or admin only.
func (s *QueueService) Update(ctx context.Context, requester *domain.User, queueID string, input UpdateInput) (*domain.Queue, error) {
	queue, err := s.Get(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if !queue.CanManage(requester) {
		return nil, apperrors.NewForbidden("not queue owner or admin")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("queue name required", nil)
	}

	queue.Name = name
	queue.Active = input.Active
	if err := s.queues.Update(ctx, queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// Delete removes the queue and, by cascade, its tickets; owner or admin only.
func (s *QueueService) Delete(ctx context.Context, requester *domain.User, queueID string) error {
	queue, err := s.Get(ctx, queueID)
	if err != nil {
		return err
	}
	if !queue.CanManage(requester) {
		return apperrors.NewForbidden("not queue owner or admin")
	}
	if err := s.queues.Delete(ctx, queue.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("queue", map[string]any{"queue_id": queueID})
		}
		return err
	}
	return nil
}
