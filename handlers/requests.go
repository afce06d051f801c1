// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/jukebox-party/middleware"
	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/namecheck"
	"github.com/danielhkuo/jukebox-party/store"
)

type RequestHandler struct {
	store *store.Store
}

func NewRequestHandler(st *store.Store) *RequestHandler {
	return &RequestHandler{store: st}
}

func parseSubmit(w http.ResponseWriter, r *http.Request) (models.SubmitRequest, bool) {
	var req models.SubmitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return req, false
	}
	req.SongID = strings.TrimSpace(req.SongID)
	if req.SongID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "songId is required")
		return req, false
	}
	req.UserName = namecheck.Sanitize(req.UserName)
	return req, true
}

// Submit handles POST /api/request
// Kiosk submission; the router requires X-Kiosk-Secret. The kiosk spends
// its credit through PUT /api/credits before calling this.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	req, ok := parseSubmit(w, r)
	if !ok {
		return
	}

	queued, err := h.store.CreateRequest(r.Context(), req.SongID, req.UserName, models.SourceKiosk)
	if errors.Is(err, store.ErrSongNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Song not found")
		return
	}
	if err != nil {
		slog.Error("failed to queue kiosk request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Queue write failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitResponse{
		Message: "Kiosk request logged!",
		Request: queued,
	})
}

// Emergency handles POST /api/request/emergency
// Used by the picker after returning from a successful checkout. When a
// paymentRef is supplied the request is queued at most once per checkout.
func (h *RequestHandler) Emergency(w http.ResponseWriter, r *http.Request) {
	req, ok := parseSubmit(w, r)
	if !ok {
		return
	}

	queued, created, err := h.store.CreatePaidRequest(r.Context(), req.PaymentRef, req.SongID, req.UserName, models.SourceEmergency)
	if errors.Is(err, store.ErrSongNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Song lookup failed")
		return
	}
	if err != nil {
		slog.Error("failed to queue emergency request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Queue write failed")
		return
	}

	if !created {
		slog.Info("paid request already queued", "request_id", queued.ID, "payment_ref", req.PaymentRef)
	}
	middleware.JSONResponse(w, http.StatusOK, models.SubmitResponse{
		Message: "queued",
		Request: queued,
	})
}
