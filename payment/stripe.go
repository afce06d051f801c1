// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/danielhkuo/jukebox-party/models"
)

// MinimumAmount is the smallest accepted checkout, in cents.
const MinimumAmount int64 = 500

// CheckoutCompleted is the webhook event type that confirms a payment.
const CheckoutCompleted = "checkout.session.completed"

var (
	ErrNoCheckoutURL    = errors.New("payment provider returned no checkout URL")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

var sessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "jukebox_checkout_sessions_total",
	Help: "Checkout session attempts by outcome",
}, []string{"outcome"})

// Checkout describes one song request to be paid for.
type Checkout struct {
	SongID   string
	UserName string
	Amount   int64 // cents
}

// Completion is a confirmed payment read from the webhook.
type Completion struct {
	SessionID string
	SongID    string
	UserName  string
}

// Gateway creates checkout sessions and verifies payment webhooks.
type Gateway interface {
	CreateSession(ctx context.Context, c Checkout) (string, error)
	ParseWebhook(payload []byte, signature string) (*Completion, error)
}

// ClampAmount enforces the server-side minimum.
func ClampAmount(amount int64) int64 {
	if amount < MinimumAmount {
		return MinimumAmount
	}
	return amount
}

// StripeGateway implements Gateway with Stripe Checkout.
type StripeGateway struct {
	webhookSecret string
	domain        string

	newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewStripeGateway configures the Stripe client. domain is the public base
// URL the payment page returns to.
func NewStripeGateway(secretKey, webhookSecret, domain string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{
		webhookSecret: webhookSecret,
		domain:        domain,
		newSession:    session.New,
	}
}

// ReturnURL builds the picker URL the payment page redirects back to.
// The session id placeholder is filled in by Stripe.
func ReturnURL(domain, outcome string) string {
	q := url.Values{}
	q.Set("payment", outcome)
	u := domain + "/picker?" + q.Encode()
	if outcome == models.PaymentSuccess {
		u += "&session_id={CHECKOUT_SESSION_ID}"
	}
	return u
}

// SessionParams builds the checkout parameters for c.
func SessionParams(c Checkout, domain string) *stripe.CheckoutSessionParams {
	return &stripe.CheckoutSessionParams{
		SuccessURL:         stripe.String(ReturnURL(domain, models.PaymentSuccess)),
		CancelURL:          stripe.String(ReturnURL(domain, models.PaymentCancelled)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Song Request"),
						Description: stripe.String("Live song request"),
					},
					UnitAmount: stripe.Int64(ClampAmount(c.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"songId":   c.SongID,
			"userName": c.UserName,
		},
	}
}

func (g *StripeGateway) CreateSession(ctx context.Context, c Checkout) (string, error) {
	s, err := g.newSession(SessionParams(c, g.domain))
	if err != nil {
		sessionsCreated.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	if s.URL == "" {
		sessionsCreated.WithLabelValues("error").Inc()
		return "", ErrNoCheckoutURL
	}

	sessionsCreated.WithLabelValues("created").Inc()
	slog.Info("checkout session created", "session_id", s.ID, "song_id", c.SongID)
	return s.URL, nil
}

// ParseWebhook verifies the signature and returns the completed checkout,
// or nil for event types that do not confirm a payment.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Completion, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if string(event.Type) != CheckoutCompleted {
		return nil, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}

	return &Completion{
		SessionID: s.ID,
		SongID:    s.Metadata["songId"],
		UserName:  s.Metadata["userName"],
	}, nil
}
