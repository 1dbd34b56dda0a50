package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"

	"github.com/ManuelReschke/webhook-ledger/app/models"
	"github.com/ManuelReschke/webhook-ledger/app/repository"
)

const testSecret = "whsec_controller_test"

// fakeEventRepository stands in for the unique index on external_event_id.
type fakeEventRepository struct {
	mu      sync.Mutex
	rows    []models.WebhookEvent
	creates int
	failErr error
}

func (r *fakeEventRepository) CreateIfNotExists(_ context.Context, event *models.WebhookEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.failErr != nil {
		return false, r.failErr
	}
	for _, row := range r.rows {
		if row.ExternalEventID == event.ExternalEventID {
			return false, nil
		}
	}
	event.ID = uint64(len(r.rows) + 1)
	r.rows = append(r.rows, *event)
	return true, nil
}

func (r *fakeEventRepository) GetByExternalID(_ context.Context, id string) (*models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	for _, row := range r.rows {
		if row.ExternalEventID == id {
			found := row
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEventRepository) filtered(eventType string) []models.WebhookEvent {
	out := make([]models.WebhookEvent, 0, len(r.rows))
	for _, row := range r.rows {
		if eventType == "" || row.EventType == eventType {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.After(out[j].ReceivedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *fakeEventRepository) List(_ context.Context, f repository.EventFilter) ([]models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	all := r.filtered(f.EventType)
	if f.Offset >= len(all) {
		return nil, nil
	}
	end := min(f.Offset+f.Limit, len(all))
	return all[f.Offset:end], nil
}

func (r *fakeEventRepository) Count(_ context.Context, eventType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return 0, r.failErr
	}
	return int64(len(r.filtered(eventType))), nil
}

func (r *fakeEventRepository) Ping(context.Context) error {
	if r.failErr != nil {
		return r.failErr
	}
	return nil
}

func (r *fakeEventRepository) rowCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

var errStoreDown = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

type observedDelivery struct {
	outcome string
	seconds float64
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observedDelivery
}

func (o *recordingObserver) Observe(outcome string, seconds float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observedDelivery{outcome: outcome, seconds: seconds})
}

func (o *recordingObserver) outcomes() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.seen))
	for _, d := range o.seen {
		out = append(out, d.outcome)
	}
	return out
}

func signPayload(payload []byte, secret string) string {
	return stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body
}
