package router

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"

	"github.com/ManuelReschke/webhook-ledger/app/controllers"
	"github.com/ManuelReschke/webhook-ledger/app/models"
	"github.com/ManuelReschke/webhook-ledger/app/repository"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/config"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/ledger"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/metrics"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/webhook"
)

const routerSecret = "whsec_router"

type mapRepository struct {
	mu   sync.Mutex
	rows map[string]models.WebhookEvent
}

func (r *mapRepository) CreateIfNotExists(_ context.Context, e *models.WebhookEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[e.ExternalEventID]; ok {
		return false, nil
	}
	e.ID = uint64(len(r.rows) + 1)
	r.rows[e.ExternalEventID] = *e
	return true, nil
}

func (r *mapRepository) GetByExternalID(_ context.Context, id string) (*models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		return &row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mapRepository) List(context.Context, repository.EventFilter) ([]models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.WebhookEvent, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out, nil
}

func (r *mapRepository) Count(context.Context, string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

func (r *mapRepository) Ping(context.Context) error { return nil }

func newRoutedApp(cfg *config.Config) *fiber.App {
	svc := ledger.NewService(&mapRepository{rows: map[string]models.WebhookEvent{}})
	m := metrics.NewWebhookMetrics()

	app := fiber.New(fiber.Config{ErrorHandler: controllers.ErrorHandler})
	InstallRouter(app, Dependencies{
		Config:   cfg,
		Webhooks: controllers.NewWebhookController(webhook.NewStripeVerifier(routerSecret, 0), svc, m, time.Second),
		Events:   controllers.NewEventController(svc),
		Health:   controllers.NewHealthController(svc),
		Metrics:  m.Handler(),
	})
	return app
}

func deliver(t *testing.T, app *fiber.App, payload []byte) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhook", bytes.NewReader(payload))
	req.Header.Set(webhook.SignatureHeader, stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   payload,
		Secret:    routerSecret,
		Timestamp: time.Now(),
	}).Header)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRoutesEndToEnd(t *testing.T) {
	app := newRoutedApp(&config.Config{EventsAPIKey: "reader-key", EventsRateLimit: 100})

	assert.Equal(t, fiber.StatusOK, deliver(t, app, []byte(`{"id":"evt_r1","type":"invoice.paid"}`)))

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/events/evt_r1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/events/evt_r1", nil)
	req.Header.Set("X-API-Key", "reader-key")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `webhook_deliveries_total{outcome="stored"} 1`)
}

func TestMonitorRequiresCredentials(t *testing.T) {
	resp, err := newRoutedApp(&config.Config{}).Test(httptest.NewRequest("GET", "/monitor", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	app := newRoutedApp(&config.Config{MonitorUser: "ops", MonitorPassword: "pw"})
	resp, err = app.Test(httptest.NewRequest("GET", "/monitor", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/monitor", nil)
	req.SetBasicAuth("ops", "pw")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCheckoutRouteAbsentWithoutController(t *testing.T) {
	resp, err := newRoutedApp(&config.Config{}).Test(httptest.NewRequest("POST", "/create-checkout-session", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
