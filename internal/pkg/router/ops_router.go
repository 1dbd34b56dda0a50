package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/webhook-ledger/internal/pkg/constants"
)

// OpsRouter mounts the prometheus endpoint and, with credentials
// configured, the fiber monitor page.
type OpsRouter struct {
	deps Dependencies
}

func (o OpsRouter) InstallRouter(app *fiber.App) {
	if o.deps.Metrics != nil {
		app.Get(constants.MetricsRoute, adaptor.HTTPHandler(o.deps.Metrics))
	}

	cfg := o.deps.Config
	if cfg.MonitorEnabled() {
		app.Get(constants.MonitorRoute, basicauth.New(basicauth.Config{
			Users: map[string]string{
				cfg.MonitorUser: cfg.MonitorPassword,
			},
		}), monitor.New(monitor.Config{Title: "webhook-ledger"}))
	}
}

func NewOpsRouter(deps Dependencies) *OpsRouter {
	return &OpsRouter{deps: deps}
}
