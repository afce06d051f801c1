// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielhkuo/jukebox-party/middleware"
	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/namecheck"
	"github.com/danielhkuo/jukebox-party/payment"
	"github.com/danielhkuo/jukebox-party/store"
)

const maxWebhookBytes = int64(65536)

var paymentsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "jukebox_payments_completed_total",
	Help: "Checkout sessions confirmed by the payment webhook",
})

type PaymentHandler struct {
	store   *store.Store
	gateway payment.Gateway
}

// NewPaymentHandler accepts a nil gateway when payments are not configured;
// the endpoints then answer 503.
func NewPaymentHandler(st *store.Store, gateway payment.Gateway) *PaymentHandler {
	return &PaymentHandler{store: st, gateway: gateway}
}

// CreateCheckoutSession handles POST /api/create-checkout-session
func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if h.gateway == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Payments are not configured")
		return
	}

	var req models.CheckoutSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.SongID = strings.TrimSpace(req.SongID)
	if req.SongID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "songId is required")
		return
	}

	if _, err := h.store.GetSong(r.Context(), req.SongID); err != nil {
		if errors.Is(err, store.ErrSongNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Song not found")
			return
		}
		slog.Error("failed to look up song for checkout", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	url, err := h.gateway.CreateSession(r.Context(), payment.Checkout{
		SongID:   req.SongID,
		UserName: namecheck.Sanitize(req.UserName),
		Amount:   payment.ClampAmount(req.Amount),
	})
	if err != nil {
		slog.Error("checkout session failed", "song_id", req.SongID, "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Could not start checkout")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CheckoutSessionResponse{URL: url})
}

// Webhook handles POST /api/webhook
// Queues the paid request from the checkout metadata. Unknown songs are
// acknowledged with 200 so the provider stops retrying.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.gateway == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	completion, err := h.gateway.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		slog.Warn("webhook rejected", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if completion == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	paymentsCompleted.Inc()
	slog.Info("payment received", "session_id", completion.SessionID, "song_id", completion.SongID)

	if completion.SongID == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	req, created, err := h.store.CreatePaidRequest(r.Context(), completion.SessionID, completion.SongID,
		namecheck.Sanitize(completion.UserName), models.SourceStripe)
	if errors.Is(err, store.ErrSongNotFound) {
		slog.Error("paid request for unknown song", "song_id", completion.SongID)
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		slog.Error("failed to queue paid request", "session_id", completion.SessionID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	slog.Info("paid request queued", "request_id", req.ID, "created", created)
	w.WriteHeader(http.StatusOK)
}
