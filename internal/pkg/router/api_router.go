package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/webhook-ledger/internal/pkg/constants"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/middleware"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/ratelimit"
)

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	cfg := h.deps.Config
	limit := ratelimit.New(cfg.EventsRateLimit, h.deps.LimiterStorage)

	if h.deps.Health != nil {
		app.Get(constants.HealthRoute, h.deps.Health.HandleHealth)
	}

	if h.deps.Events != nil {
		auth := middleware.APIKeyAuthMiddleware(cfg.EventsAPIKey)
		app.Get(constants.EventsRoute, limit, auth, h.deps.Events.HandleListEvents)
		app.Get(constants.EventRoute, limit, auth, h.deps.Events.HandleGetEvent)
	}

	if h.deps.Checkout != nil {
		app.Post(constants.CheckoutSessionRoute, limit, h.deps.Checkout.HandleCreateCheckoutSession)
	}
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
