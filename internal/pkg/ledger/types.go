package ledger

import (
	"context"
	"errors"

	"github.com/ManuelReschke/webhook-ledger/app/models"
)

// Outcome is the storage result of one verified delivery.
type Outcome string

const (
	OutcomeStored      Outcome = "stored"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeStoreFailed Outcome = "store_failed"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrCacheMiss     = errors.New("event cache miss")
	errInvalidEvent  = errors.New("event id is required")
)

// EventCache is a read-through cache for single events. Stored rows never
// change, so entries never need invalidation.
type EventCache interface {
	GetEvent(ctx context.Context, externalEventID string) (*models.WebhookEvent, error)
	SetEvent(ctx context.Context, event *models.WebhookEvent) error
}
