package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/webhook-ledger/app/models"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/ledger"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/webhook"
)

// EventRecorder stores a verified event at most once.
type EventRecorder interface {
	Record(ctx context.Context, event *webhook.Event) (ledger.Outcome, *models.WebhookEvent, error)
}

// DeliveryObserver receives one call per delivery with its terminal outcome.
// seconds is negative when the store was never reached.
type DeliveryObserver interface {
	Observe(outcome string, seconds float64)
}

type WebhookController struct {
	verifier     webhook.Verifier
	recorder     EventRecorder
	observer     DeliveryObserver
	storeTimeout time.Duration
}

func NewWebhookController(verifier webhook.Verifier, recorder EventRecorder, observer DeliveryObserver, storeTimeout time.Duration) *WebhookController {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &WebhookController{
		verifier:     verifier,
		recorder:     recorder,
		observer:     observer,
		storeTimeout: storeTimeout,
	}
}

// HandleWebhook verifies the delivery against the exact request bytes,
// records it, and acknowledges. Once the signature checks out the response
// is always 200, whatever the store did.
func (wc *WebhookController) HandleWebhook(c *fiber.Ctx) error {
	rawBody, ok := webhook.RawBody(c)
	if !ok {
		wc.observe(CodeRawBodyUnavailable, -1)
		log.Errorw("[Webhook] raw body capture is not installed on this route", "path", c.Path())
		return sendError(c, fiber.StatusInternalServerError, CodeRawBodyUnavailable, "Raw request body is unavailable")
	}

	event, err := wc.verifier.Verify(rawBody, c.Get(webhook.SignatureHeader))
	if err != nil {
		return wc.rejectDelivery(c, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), wc.storeTimeout)
	defer cancel()

	start := time.Now()
	outcome, _, err := wc.recorder.Record(ctx, event)
	elapsed := time.Since(start).Seconds()

	switch {
	case err != nil:
		outcome = ledger.OutcomeStoreFailed
		log.Errorw("[Webhook] failed to store event",
			"event_id", event.ID,
			"event_type", event.Type,
			"request_id", c.Locals("requestid"),
			"error", err,
		)
	case outcome == ledger.OutcomeDuplicate:
		log.Infow("[Webhook] duplicate delivery ignored", "event_id", event.ID, "event_type", event.Type)
	default:
		log.Infow("[Webhook] event stored", "event_id", event.ID, "event_type", event.Type)
	}
	wc.observe(string(outcome), elapsed)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"received":  true,
		"eventId":   event.ID,
		"eventType": event.Type,
	})
}

func (wc *WebhookController) rejectDelivery(c *fiber.Ctx, err error) error {
	status, code, message := fiber.StatusBadRequest, CodeInvalidSignature, "Webhook signature verification failed"
	switch {
	case errors.Is(err, webhook.ErrMissingSignature):
		code, message = CodeMissingSignature, "Missing Stripe-Signature header"
	case errors.Is(err, webhook.ErrMissingSecret):
		status, code, message = fiber.StatusInternalServerError, CodeSecretNotConfigured, "Webhook secret is not configured"
	case errors.Is(err, webhook.ErrInvalidEvent):
		code, message = CodeInvalidEvent, "Webhook payload is not a valid event"
	}

	wc.observe(code, -1)
	if status >= fiber.StatusInternalServerError {
		log.Errorw("[Webhook] cannot verify delivery", "error", err)
	} else {
		log.Warnw("[Webhook] delivery rejected", "code", code, "ip", c.IP(), "error", err)
	}
	return sendError(c, status, code, message)
}

func (wc *WebhookController) observe(outcome string, seconds float64) {
	if wc.observer != nil {
		wc.observer.Observe(outcome, seconds)
	}
}
