package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/webhook-ledger/app/models"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/ledger"
)

// EventReader is the read side of the ledger.
type EventReader interface {
	List(ctx context.Context, q ledger.ListQuery) ([]models.WebhookEvent, error)
	Count(ctx context.Context, q ledger.ListQuery) (int64, error)
	Get(ctx context.Context, externalEventID string) (*models.WebhookEvent, error)
}

type EventController struct {
	reader EventReader
}

func NewEventController(reader EventReader) *EventController {
	return &EventController{reader: reader}
}

// HandleListEvents serves GET /events?limit=&offset=&type=. Bad paging
// values are coerced, never rejected.
func (ec *EventController) HandleListEvents(c *fiber.Ctx) error {
	q := ledger.ParseListQuery(c.Query("limit"), c.Query("offset"), c.Query("type"))

	events, err := ec.reader.List(c.UserContext(), q)
	if err != nil {
		log.Errorw("[Events] list failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch events"})
	}
	total, err := ec.reader.Count(c.UserContext(), q)
	if err != nil {
		log.Errorw("[Events] count failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch events"})
	}
	if events == nil {
		events = []models.WebhookEvent{}
	}

	return c.JSON(fiber.Map{
		"events": events,
		"count":  len(events),
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
	})
}

// HandleGetEvent serves GET /events/:eventId by exact external id.
func (ec *EventController) HandleGetEvent(c *fiber.Ctx) error {
	event, err := ec.reader.Get(c.UserContext(), c.Params("eventId"))
	if err != nil {
		if errors.Is(err, ledger.ErrEventNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
		}
		log.Errorw("[Events] lookup failed", "event_id", c.Params("eventId"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch event"})
	}
	return c.JSON(event)
}
