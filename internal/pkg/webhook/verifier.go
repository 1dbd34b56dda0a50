package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

// SignatureHeader is the header Stripe signs deliveries with.
const SignatureHeader = "Stripe-Signature"

var (
	ErrMissingSignature = errors.New("missing webhook signature header")
	ErrMissingSecret    = errors.New("webhook signing secret is not configured")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrInvalidEvent     = errors.New("verified webhook payload has no event id or type")
)

// Event is a delivery whose signature has been checked. Payload holds the
// exact bytes that were verified.
type Event struct {
	ID         string
	Type       string
	APIVersion string
	Livemode   bool
	Created    time.Time
	Payload    json.RawMessage
}

// Verifier turns a raw delivery into a trusted Event.
type Verifier interface {
	Verify(payload []byte, signatureHeader string) (*Event, error)
}

// StripeVerifier checks Stripe-Signature headers with stripe-go.
type StripeVerifier struct {
	secret    string
	tolerance time.Duration
}

// NewStripeVerifier creates a verifier. A zero tolerance uses stripe-go's
// default of five minutes.
func NewStripeVerifier(secret string, tolerance time.Duration) *StripeVerifier {
	return &StripeVerifier{
		secret:    strings.TrimSpace(secret),
		tolerance: tolerance,
	}
}

// Verify must be given the body as received on the wire. Any re-encoding of
// the JSON changes the signed bytes and fails verification.
func (v *StripeVerifier) Verify(payload []byte, signatureHeader string) (*Event, error) {
	header := strings.TrimSpace(signatureHeader)
	if header == "" {
		return nil, ErrMissingSignature
	}
	if v.secret == "" {
		return nil, ErrMissingSecret
	}

	ev, err := stripewebhook.ConstructEventWithOptions(payload, header, v.secret, stripewebhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if strings.TrimSpace(ev.ID) == "" || strings.TrimSpace(string(ev.Type)) == "" {
		return nil, ErrInvalidEvent
	}

	return &Event{
		ID:         ev.ID,
		Type:       string(ev.Type),
		APIVersion: ev.APIVersion,
		Livemode:   ev.Livemode,
		Created:    time.Unix(ev.Created, 0).UTC(),
		Payload:    append(json.RawMessage(nil), payload...),
	}, nil
}
