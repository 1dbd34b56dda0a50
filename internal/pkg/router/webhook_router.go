package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/webhook-ledger/app/controllers"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/constants"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/webhook"
)

type WebhookRouter struct {
	webhooks *controllers.WebhookController
}

func (r WebhookRouter) InstallRouter(app *fiber.App) {
	if r.webhooks == nil {
		return
	}
	// Raw body capture is scoped to this route only.
	app.Post(constants.WebhookRoute, webhook.CaptureRawBody(), r.webhooks.HandleWebhook)
}

func NewWebhookRouter(deps Dependencies) *WebhookRouter {
	return &WebhookRouter{webhooks: deps.Webhooks}
}
