package ledger

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/webhook-ledger/app/models"
)

// DefaultEventTypes are the Stripe categories that get a log handler out of
// the box. Every other type is still stored.
var DefaultEventTypes = []string{
	"payment_intent.succeeded",
	"payment_intent.payment_failed",
	"checkout.session.completed",
	"customer.subscription.created",
	"customer.subscription.updated",
	"customer.subscription.deleted",
	"invoice.payment_succeeded",
	"invoice.payment_failed",
	"charge.refunded",
}

type eventObjectSummary struct {
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Object   string `json:"object"`
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Status   string `json:"status"`
			Customer string `json:"customer"`
		} `json:"object"`
	} `json:"data"`
}

// RegisterDefaultHandlers installs LogEventHandler for DefaultEventTypes.
func RegisterDefaultHandlers(d *Dispatcher) {
	for _, eventType := range DefaultEventTypes {
		d.Register(eventType, LogEventHandler)
	}
}

// LogEventHandler logs a short summary of the event's data object.
func LogEventHandler(_ context.Context, event *models.WebhookEvent) error {
	var summary eventObjectSummary
	if err := json.Unmarshal(event.Payload, &summary); err != nil {
		return err
	}
	obj := summary.Data.Object
	log.Infow("[Ledger] event received",
		"event_id", event.ExternalEventID,
		"event_type", event.EventType,
		"object", obj.Object,
		"object_id", obj.ID,
		"amount", obj.Amount,
		"currency", obj.Currency,
		"status", obj.Status,
		"customer", obj.Customer,
	)
	return nil
}
