package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(event Event)
	Subscribe(eventType EventType, handler EventHandler)
}

// asyncDispatcher runs handlers on detached goroutines so that publishing
// never blocks or fails the triggering operation.
type asyncDispatcher struct {
	mu             sync.RWMutex
	listeners      map[EventType][]EventHandler
	handlerTimeout time.Duration
}

// NewAsyncDispatcher creates a dispatcher instance.
func NewAsyncDispatcher() Dispatcher {
	return &asyncDispatcher{
		listeners:      make(map[EventType][]EventHandler),
		handlerTimeout: 30 * time.Second,
	}
}

// Publish invokes handlers for the event on a separate goroutine. Handlers get
// a fresh bounded context; the request context has usually ended by the time
// they run.
func (d *asyncDispatcher) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.handlerTimeout)
		defer cancel()
		for _, handler := range handlers {
			// handler errors are the handler's problem to log
			_ = handler(ctx, event)
		}
	}()
}

// Subscribe registers a handler for the given event type.
func (d *asyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
