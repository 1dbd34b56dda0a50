package payments

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

type recordedCall struct {
	path string
	form url.Values
}

func stripeStub(t *testing.T, status int, body string) (stripe.Backend, *recordedCall) {
	t.Helper()
	call := &recordedCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		call.path = r.URL.Path
		call.form, _ = url.ParseQuery(string(raw))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return backend, call
}

func TestCreateSessionForwardsArguments(t *testing.T) {
	backend, call := stripeStub(t, http.StatusOK,
		`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`)
	c := NewCheckout(CheckoutOptions{
		SecretKey:  "sk_test_123",
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
		Backend:    backend,
	})

	s, err := c.CreateSession(context.Background(), CheckoutRequest{
		PriceID:       "price_123",
		Quantity:      2,
		CustomerEmail: "buyer@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", s.URL)

	assert.Equal(t, "/v1/checkout/sessions", call.path)
	assert.Equal(t, "payment", call.form.Get("mode"))
	assert.Equal(t, "price_123", call.form.Get("line_items[0][price]"))
	assert.Equal(t, "2", call.form.Get("line_items[0][quantity]"))
	assert.Equal(t, "https://shop.example/success", call.form.Get("success_url"))
	assert.Equal(t, "https://shop.example/cancel", call.form.Get("cancel_url"))
	assert.Equal(t, "buyer@example.com", call.form.Get("customer_email"))
}

func TestCreateSessionNotConfigured(t *testing.T) {
	c := NewCheckout(CheckoutOptions{})
	assert.False(t, c.Configured())

	_, err := c.CreateSession(context.Background(), CheckoutRequest{PriceID: "price_123"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateSessionValidation(t *testing.T) {
	c := NewCheckout(CheckoutOptions{SecretKey: "sk_test_123", SuccessURL: "https://shop.example/success"})

	tests := []struct {
		name string
		req  CheckoutRequest
	}{
		{name: "missing price", req: CheckoutRequest{}},
		{name: "bad mode", req: CheckoutRequest{PriceID: "price_1", Mode: "lease"}},
		{name: "bad email", req: CheckoutRequest{PriceID: "price_1", CustomerEmail: "nope"}},
		{name: "negative quantity", req: CheckoutRequest{PriceID: "price_1", Quantity: -1}},
		{name: "bad url", req: CheckoutRequest{PriceID: "price_1", SuccessURL: "::"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateSession(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	withoutDefaults := NewCheckout(CheckoutOptions{SecretKey: "sk_test_123"})
	_, err := withoutDefaults.CreateSession(context.Background(), CheckoutRequest{PriceID: "price_1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreateSessionProviderError(t *testing.T) {
	backend, _ := stripeStub(t, http.StatusBadRequest,
		`{"error":{"type":"invalid_request_error","message":"No such price: 'price_missing'"}}`)
	c := NewCheckout(CheckoutOptions{SecretKey: "sk_test_123", SuccessURL: "https://shop.example/ok", Backend: backend})

	_, err := c.CreateSession(context.Background(), CheckoutRequest{PriceID: "price_missing"})
	require.Error(t, err)

	stripeErr, ok := ProviderError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, stripeErr.HTTPStatusCode)
	assert.Contains(t, stripeErr.Msg, "No such price")
}
