package repository

import (
	"context"

	"github.com/ManuelReschke/webhook-ledger/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// eventRepository implements the EventRepository interface
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new webhook event repository instance
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// CreateIfNotExists relies on the unique index on external_event_id. The
// insert and the duplicate check are one statement, so concurrent deliveries
// of the same event cannot both create a row.
func (r *eventRepository) CreateIfNotExists(ctx context.Context, event *models.WebhookEvent) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// GetByExternalID returns gorm.ErrRecordNotFound on a miss
func (r *eventRepository) GetByExternalID(ctx context.Context, externalEventID string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.WithContext(ctx).Where("external_event_id = ?", externalEventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns newest first; id breaks ties between equal received_at values
func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.WebhookEvent, error) {
	events := make([]models.WebhookEvent, 0, filter.Limit)
	q := r.db.WithContext(ctx).Model(&models.WebhookEvent{})
	if filter.EventType != "" {
		q = q.Where("event_type = ?", filter.EventType)
	}
	err := q.Order("received_at DESC").Order("id DESC").
		Offset(filter.Offset).Limit(filter.Limit).Find(&events).Error
	return events, err
}

// Count returns the number of stored events, optionally of one type
func (r *eventRepository) Count(ctx context.Context, eventType string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.WebhookEvent{})
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	err := q.Count(&count).Error
	return count, err
}

// Ping runs a trivial query so the health check exercises a pooled connection
func (r *eventRepository) Ping(ctx context.Context) error {
	var one int
	return r.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}
