package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ManuelReschke/webhook-ledger/app/models"
)

// HandlerFunc reacts to a newly stored event of one type.
type HandlerFunc func(ctx context.Context, event *models.WebhookEvent) error

// Dispatcher maps event types to handlers. Types without a handler are
// stored and otherwise ignored.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]HandlerFunc)}
}

// Register appends h to the handlers for eventType.
func (d *Dispatcher) Register(eventType string, h HandlerFunc) {
	if h == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], h)
}

// Has reports whether any handler is registered for eventType.
func (d *Dispatcher) Has(eventType string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[eventType]) > 0
}

// Dispatch runs every handler for the event's type and joins their errors.
func (d *Dispatcher) Dispatch(ctx context.Context, event *models.WebhookEvent) error {
	d.mu.RLock()
	handlers := append([]HandlerFunc(nil), d.handlers[event.EventType]...)
	d.mu.RUnlock()

	var errs []error
	for i, h := range handlers {
		if err := h(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("handler %d for %s: %w", i, event.EventType, err))
		}
	}
	return errors.Join(errs...)
}
