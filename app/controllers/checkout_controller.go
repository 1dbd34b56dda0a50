package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/webhook-ledger/internal/pkg/payments"
)

type SessionCreator interface {
	CreateSession(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error)
}

type CheckoutController struct {
	sessions SessionCreator
}

func NewCheckoutController(sessions SessionCreator) *CheckoutController {
	return &CheckoutController{sessions: sessions}
}

// HandleCreateCheckoutSession forwards the request to Stripe and returns the
// hosted checkout URL. Stripe's own status code is passed through on failure.
func (cc *CheckoutController) HandleCreateCheckoutSession(c *fiber.Ctx) error {
	var req payments.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidRequest, "Request body must be JSON")
	}

	s, err := cc.sessions.CreateSession(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNotConfigured):
			return sendError(c, fiber.StatusServiceUnavailable, CodeCheckoutNotConfigured, "Checkout is not configured")
		case errors.Is(err, payments.ErrInvalidRequest):
			return sendError(c, fiber.StatusBadRequest, CodeInvalidRequest, err.Error())
		}
		if stripeErr, ok := payments.ProviderError(err); ok && stripeErr.HTTPStatusCode >= 400 {
			log.Warnw("[Checkout] stripe rejected session", "status", stripeErr.HTTPStatusCode, "error", stripeErr.Msg)
			return sendError(c, stripeErr.HTTPStatusCode, CodeProviderError, stripeErr.Msg)
		}
		log.Errorw("[Checkout] session creation failed", "error", err)
		return sendError(c, fiber.StatusBadGateway, CodeProviderError, "Checkout provider unavailable")
	}

	return c.JSON(s)
}
