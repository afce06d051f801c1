// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

func TestClampAmount(t *testing.T) {
	tests := []struct {
		in   int64
		want int64
	}{
		{0, 500},
		{-100, 500},
		{499, 500},
		{500, 500},
		{1250, 1250},
	}

	for _, tt := range tests {
		if got := ClampAmount(tt.in); got != tt.want {
			t.Errorf("ClampAmount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSessionParams(t *testing.T) {
	params := SessionParams(Checkout{SongID: "s1", UserName: "Anna", Amount: 100}, "https://jukebox.test")

	if got := *params.SuccessURL; got != "https://jukebox.test/picker?payment=success&session_id={CHECKOUT_SESSION_ID}" {
		t.Errorf("Unexpected success URL: %s", got)
	}
	if got := *params.CancelURL; got != "https://jukebox.test/picker?payment=cancelled" {
		t.Errorf("Unexpected cancel URL: %s", got)
	}
	if got := *params.LineItems[0].PriceData.UnitAmount; got != MinimumAmount {
		t.Errorf("Expected amount clamped to %d, got %d", MinimumAmount, got)
	}
	if params.Metadata["songId"] != "s1" || params.Metadata["userName"] != "Anna" {
		t.Errorf("Unexpected metadata: %v", params.Metadata)
	}
}

func TestCreateSession(t *testing.T) {
	t.Run("returns checkout URL", func(t *testing.T) {
		g := NewStripeGateway("sk_test", "whsec_test", "https://jukebox.test")
		var captured *stripe.CheckoutSessionParams
		g.newSession = func(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			captured = p
			return &stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.test/cs_1"}, nil
		}

		url, err := g.CreateSession(context.Background(), Checkout{SongID: "s1", Amount: 700})
		if err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
		if url != "https://checkout.test/cs_1" {
			t.Errorf("Unexpected URL %s", url)
		}
		if *captured.LineItems[0].PriceData.UnitAmount != 700 {
			t.Errorf("Expected 700 cents, got %d", *captured.LineItems[0].PriceData.UnitAmount)
		}
	})

	t.Run("empty URL is an error", func(t *testing.T) {
		g := NewStripeGateway("sk_test", "whsec_test", "https://jukebox.test")
		g.newSession = func(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			return &stripe.CheckoutSession{ID: "cs_1"}, nil
		}

		if _, err := g.CreateSession(context.Background(), Checkout{SongID: "s1"}); !errors.Is(err, ErrNoCheckoutURL) {
			t.Errorf("Expected ErrNoCheckoutURL, got %v", err)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		g := NewStripeGateway("sk_test", "whsec_test", "https://jukebox.test")
		g.newSession = func(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			return nil, errors.New("card network down")
		}

		_, err := g.CreateSession(context.Background(), Checkout{SongID: "s1"})
		if err == nil || !strings.Contains(err.Error(), "card network down") {
			t.Errorf("Expected wrapped provider error, got %v", err)
		}
	})
}

func signedEvent(t *testing.T, eventType, secret string) ([]byte, string) {
	t.Helper()
	payload := []byte(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": "` + stripe.APIVersion + `",
		"type": "` + eventType + `",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"metadata": {"songId": "bach-air", "userName": "Anna"}
		}}
	}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestParseWebhook(t *testing.T) {
	g := NewStripeGateway("sk_test", "whsec_test", "https://jukebox.test")

	t.Run("completed checkout", func(t *testing.T) {
		payload, header := signedEvent(t, CheckoutCompleted, "whsec_test")

		c, err := g.ParseWebhook(payload, header)
		if err != nil {
			t.Fatalf("ParseWebhook() error = %v", err)
		}
		if c == nil {
			t.Fatal("Expected a completion")
		}
		if c.SessionID != "cs_test_1" || c.SongID != "bach-air" || c.UserName != "Anna" {
			t.Errorf("Unexpected completion: %+v", c)
		}
	})

	t.Run("other event types are ignored", func(t *testing.T) {
		payload, header := signedEvent(t, "payment_intent.created", "whsec_test")

		c, err := g.ParseWebhook(payload, header)
		if err != nil {
			t.Fatalf("ParseWebhook() error = %v", err)
		}
		if c != nil {
			t.Errorf("Expected nil completion, got %+v", c)
		}
	})

	t.Run("bad signature", func(t *testing.T) {
		payload, header := signedEvent(t, CheckoutCompleted, "whsec_other")

		if _, err := g.ParseWebhook(payload, header); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("Expected ErrInvalidSignature, got %v", err)
		}
	})
}
