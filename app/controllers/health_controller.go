package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db      Pinger
	timeout time.Duration
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db, timeout: 3 * time.Second}
}

// HandleHealth runs a trivial query against the store.
func (hc *HealthController) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), hc.timeout)
	defer cancel()

	if err := hc.db.Ping(ctx); err != nil {
		log.Warnw("[Health] database ping failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":   "error",
			"database": "disconnected",
			"error":    err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "database": "connected"})
}
