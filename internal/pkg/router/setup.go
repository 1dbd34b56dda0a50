package router

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/webhook-ledger/app/controllers"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/config"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the wired handlers the routers mount. Nil controllers
// leave their routes unregistered.
type Dependencies struct {
	Config         *config.Config
	Webhooks       *controllers.WebhookController
	Events         *controllers.EventController
	Health         *controllers.HealthController
	Checkout       *controllers.CheckoutController
	Metrics        http.Handler
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	if deps.Config == nil {
		deps.Config = &config.Config{}
	}
	// The webhook route goes first so nothing registered later can touch
	// its body before verification.
	setup(app, NewWebhookRouter(deps), NewApiRouter(deps), NewOpsRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
