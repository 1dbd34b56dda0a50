package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

var (
	ErrNotConfigured  = errors.New("stripe secret key is not configured")
	ErrInvalidRequest = errors.New("invalid checkout request")
)

// CheckoutRequest is forwarded to Stripe as-is. Empty URLs fall back to the
// configured defaults.
type CheckoutRequest struct {
	PriceID           string `json:"priceId" validate:"required"`
	Quantity          int64  `json:"quantity" validate:"omitempty,gte=1,lte=999"`
	Mode              string `json:"mode" validate:"omitempty,oneof=payment subscription setup"`
	CustomerEmail     string `json:"customerEmail" validate:"omitempty,email"`
	ClientReferenceID string `json:"clientReferenceId" validate:"omitempty,max=200"`
	SuccessURL        string `json:"successUrl" validate:"omitempty,url"`
	CancelURL         string `json:"cancelUrl" validate:"omitempty,url"`
}

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// Checkout creates hosted checkout sessions. It keeps no state of its own.
type Checkout struct {
	client     session.Client
	configured bool
	successURL string
	cancelURL  string
	validate   *validator.Validate
}

type CheckoutOptions struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
	// Backend overrides the Stripe API backend, for tests.
	Backend stripe.Backend
}

func NewCheckout(opts CheckoutOptions) *Checkout {
	backend := opts.Backend
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &Checkout{
		client:     session.Client{B: backend, Key: opts.SecretKey},
		configured: strings.TrimSpace(opts.SecretKey) != "",
		successURL: opts.SuccessURL,
		cancelURL:  opts.CancelURL,
		validate:   validator.New(),
	}
}

func (c *Checkout) Configured() bool {
	return c.configured
}

// CreateSession validates req and calls Stripe. Provider failures come back
// as *stripe.Error so callers can forward the status code.
func (c *Checkout) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	successURL := firstNonEmpty(req.SuccessURL, c.successURL)
	if successURL == "" {
		return nil, fmt.Errorf("%w: successUrl is required", ErrInvalidRequest)
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	mode := req.Mode
	if mode == "" {
		mode = string(stripe.CheckoutSessionModePayment)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(mode),
		SuccessURL: stripe.String(successURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(quantity)},
		},
	}
	params.Context = ctx
	if cancelURL := firstNonEmpty(req.CancelURL, c.cancelURL); cancelURL != "" {
		params.CancelURL = stripe.String(cancelURL)
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}

	s, err := c.client.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ProviderError unwraps a Stripe API error, if err is one.
func ProviderError(err error) (*stripe.Error, bool) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr, true
	}
	return nil, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
