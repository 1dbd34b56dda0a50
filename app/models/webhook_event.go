package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is one verified provider event. Rows are written once by
// the ingestion path and never updated.
type WebhookEvent struct {
	ID              uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalEventID string         `gorm:"type:varchar(255);not null;uniqueIndex:ux_webhook_events_external_event_id" json:"external_event_id"`
	EventType       string         `gorm:"type:varchar(255);not null;index:idx_webhook_events_event_type" json:"event_type"`
	Payload         datatypes.JSON `gorm:"not null" json:"payload"`
	ReceivedAt      time.Time      `gorm:"not null;index:idx_webhook_events_received_at,sort:desc" json:"received_at"`
	ProcessedAt     *time.Time     `gorm:"default:null" json:"processed_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// NewWebhookEvent stamps received_at and processed_at with the same UTC instant.
func NewWebhookEvent(externalEventID, eventType string, payload []byte, now time.Time) *WebhookEvent {
	ts := now.UTC()
	processed := ts
	return &WebhookEvent{
		ExternalEventID: externalEventID,
		EventType:       eventType,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      ts,
		ProcessedAt:     &processed,
	}
}
