package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// In-memory repository fakes implementing the same contracts as the Postgres
// implementations, including the conditional-update claim semantics.

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("u%03d", r.seq)
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Phone == phone {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type memQueueRepo struct {
	mu      sync.Mutex
	seq     int
	queues  map[string]*domain.Queue
	tickets *memTicketRepo
}

func newMemQueueRepo(tickets *memTicketRepo) *memQueueRepo {
	return &memQueueRepo{queues: make(map[string]*domain.Queue), tickets: tickets}
}

func (r *memQueueRepo) Create(_ context.Context, queue *domain.Queue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	queue.ID = fmt.Sprintf("q%03d", r.seq)
	queue.CreatedAt = time.Now()
	clone := *queue
	r.queues[queue.ID] = &clone
	return nil
}

func (r *memQueueRepo) GetByID(_ context.Context, id string) (*domain.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue, ok := r.queues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *queue
	return &clone, nil
}

func (r *memQueueRepo) List(_ context.Context) ([]domain.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Queue, 0, len(r.queues))
	for _, queue := range r.queues {
		result = append(result, *queue)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memQueueRepo) Update(_ context.Context, queue *domain.Queue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.queues[queue.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *queue
	r.queues[queue.ID] = &clone
	return nil
}

// Delete mirrors the FK cascade: the queue's tickets go with it.
func (r *memQueueRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.queues[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.queues, id)
	if r.tickets != nil {
		r.tickets.deleteByQueue(id)
	}
	return nil
}

type memTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("t%03d", r.seq)
	// distinct timestamps keep (created_at, id) ordering unambiguous
	ticket.CreatedAt = time.Unix(0, int64(r.seq)*int64(time.Millisecond))
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *memTicketRepo) ListByQueue(_ context.Context, queueID string) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.QueueID == queueID {
			result = append(result, *ticket)
		}
	}
	sortFIFO(result)
	return result, nil
}

func (r *memTicketRepo) NextWaiting(_ context.Context, queueID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.QueueID == queueID && ticket.Status == domain.TicketStatusWaiting {
			candidates = append(candidates, *ticket)
		}
	}
	if len(candidates) == 0 {
		return nil, pgx.ErrNoRows
	}
	sortFIFO(candidates)
	next := candidates[0]
	return &next, nil
}

func (r *memTicketRepo) ClaimCalled(_ context.Context, ticketID, attendantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[ticketID]
	if !ok || ticket.Status != domain.TicketStatusWaiting {
		return false, nil
	}
	ticket.Status = domain.TicketStatusCalled
	ticket.AttendantID = &attendantID
	ticket.UpdatedAt = time.Now()
	return true, nil
}

func (r *memTicketRepo) TransitionStatus(_ context.Context, ticketID string, from, to domain.TicketStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[ticketID]
	if !ok || ticket.Status != from {
		return false, nil
	}
	ticket.Status = to
	ticket.UpdatedAt = time.Now()
	return true, nil
}

func (r *memTicketRepo) CancelWaitingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, ticket := range r.tickets {
		if ticket.Status == domain.TicketStatusWaiting && ticket.CreatedAt.Before(cutoff) {
			ticket.Status = domain.TicketStatusCancelled
			ticket.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

func (r *memTicketRepo) ListWaitingBefore(_ context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.Status == domain.TicketStatusWaiting && ticket.CreatedAt.Before(cutoff) {
			result = append(result, *ticket)
		}
	}
	sortFIFO(result)
	return result, nil
}

func (r *memTicketRepo) deleteByQueue(queueID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ticket := range r.tickets {
		if ticket.QueueID == queueID {
			delete(r.tickets, id)
		}
	}
}

func sortFIFO(tickets []domain.Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].ID < tickets[j].ID
		}
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
}

type memCallBoard struct {
	mu      sync.Mutex
	entries map[string]repository.CallBoardEntry
}

func newMemCallBoard() *memCallBoard {
	return &memCallBoard{entries: make(map[string]repository.CallBoardEntry)}
}

func (b *memCallBoard) SetLastCalled(_ context.Context, queueID string, entry repository.CallBoardEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[queueID] = entry
	return nil
}

func (b *memCallBoard) GetLastCalled(_ context.Context, queueID string) (*repository.CallBoardEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.entries[queueID]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

type memMessageLogRepo struct {
	mu   sync.Mutex
	seq  int
	logs []domain.MessageLog
}

func newMemMessageLogRepo() *memMessageLogRepo {
	return &memMessageLogRepo{}
}

func (r *memMessageLogRepo) Create(_ context.Context, log *domain.MessageLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	log.ID = fmt.Sprintf("m%03d", r.seq)
	log.SentAt = time.Now()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memMessageLogRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.MessageLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.MessageLog
	for _, entry := range r.logs {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// syncDispatcher runs handlers inline on Publish so tests can observe effects
// without sleeping.
type syncDispatcher struct {
	mu        sync.Mutex
	listeners map[events.EventType][]events.EventHandler
	published []events.Event
}

func newSyncDispatcher() *syncDispatcher {
	return &syncDispatcher{listeners: make(map[events.EventType][]events.EventHandler)}
}

func (d *syncDispatcher) Publish(event events.Event) {
	d.mu.Lock()
	d.published = append(d.published, event)
	handlers := append([]events.EventHandler{}, d.listeners[event.Type]...)
	d.mu.Unlock()
	for _, handler := range handlers {
		_ = handler(context.Background(), event)
	}
}

func (d *syncDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

func (d *syncDispatcher) eventTypes() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]events.EventType, 0, len(d.published))
	for _, event := range d.published {
		result = append(result, event.Type)
	}
	return result
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("relay unreachable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError with code %s, got %v", code, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, domainErr.Code, err)
	}
}
