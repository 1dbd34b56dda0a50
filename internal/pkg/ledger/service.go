package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/webhook-ledger/app/models"
	"github.com/ManuelReschke/webhook-ledger/app/repository"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/webhook"
)

// Service records verified webhook events and answers queries over them.
type Service struct {
	repo       repository.EventRepository
	cache      EventCache
	dispatcher *Dispatcher
	now        func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithCache enables the read-through cache for Get.
func WithCache(c EventCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithDispatcher runs type handlers after an event is first stored.
func WithDispatcher(d *Dispatcher) Option {
	return func(s *Service) { s.dispatcher = d }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a ledger service from an injected repository.
func NewService(repo repository.EventRepository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record persists a verified event at most once per external id. A repeated
// delivery returns OutcomeDuplicate and no error.
func (s *Service) Record(ctx context.Context, event *webhook.Event) (Outcome, *models.WebhookEvent, error) {
	if event == nil || strings.TrimSpace(event.ID) == "" {
		return OutcomeStoreFailed, nil, errInvalidEvent
	}

	row := models.NewWebhookEvent(event.ID, event.Type, event.Payload, s.now())
	created, err := s.repo.CreateIfNotExists(ctx, row)
	if err != nil {
		return OutcomeStoreFailed, nil, fmt.Errorf("store event %s: %w", event.ID, err)
	}
	if !created {
		return OutcomeDuplicate, nil, nil
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(ctx, row); err != nil {
			log.Warnw("[Ledger] event handler failed",
				"event_id", row.ExternalEventID,
				"event_type", row.EventType,
				"error", err,
			)
		}
	}
	return OutcomeStored, row, nil
}

// List returns one page of events, newest first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]models.WebhookEvent, error) {
	return s.repo.List(ctx, repository.EventFilter{
		EventType: q.EventType,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
}

// Count returns the number of stored events matching the query's type filter.
func (s *Service) Count(ctx context.Context, q ListQuery) (int64, error) {
	return s.repo.Count(ctx, q.EventType)
}

// Get looks up an event by its exact external id.
func (s *Service) Get(ctx context.Context, externalEventID string) (*models.WebhookEvent, error) {
	id := strings.TrimSpace(externalEventID)
	if id == "" {
		return nil, ErrEventNotFound
	}

	if s.cache != nil {
		cached, err := s.cache.GetEvent(ctx, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Warnw("[Ledger] event cache read failed", "event_id", id, "error", err)
		}
	}

	event, err := s.repo.GetByExternalID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetEvent(ctx, event); err != nil {
			log.Warnw("[Ledger] event cache write failed", "event_id", id, "error", err)
		}
	}
	return event, nil
}

// Ping checks that the store answers queries.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
