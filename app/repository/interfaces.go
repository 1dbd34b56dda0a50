package repository

import (
	"context"

	"github.com/ManuelReschke/webhook-ledger/app/models"
	"gorm.io/gorm"
)

// EventFilter narrows a page of stored webhook events.
type EventFilter struct {
	EventType string
	Limit     int
	Offset    int
}

// EventRepository defines the database operations on the webhook event log.
// There is intentionally no update or delete.
type EventRepository interface {
	// CreateIfNotExists inserts the event unless its external id is already
	// stored. created is false for a duplicate; that case is not an error.
	CreateIfNotExists(ctx context.Context, event *models.WebhookEvent) (created bool, err error)
	GetByExternalID(ctx context.Context, externalEventID string) (*models.WebhookEvent, error)
	List(ctx context.Context, filter EventFilter) ([]models.WebhookEvent, error)
	Count(ctx context.Context, eventType string) (int64, error)
	Ping(ctx context.Context) error
}

// Repositories holds all repository instances
type Repositories struct {
	Event EventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Event: NewEventRepository(db),
	}
}
