// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/jukebox-party/middleware"
	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/store"
)

// StateHandler serves point-in-time reads of the queue and credit pool,
// and the unconditional credit write used by terminals.
type StateHandler struct {
	store *store.Store
}

func NewStateHandler(st *store.Store) *StateHandler {
	return &StateHandler{store: st}
}

// Queue handles GET /api/queue
func (h *StateHandler) Queue(w http.ResponseWriter, r *http.Request) {
	requests, err := h.store.ListRequests(r.Context())
	if err != nil {
		slog.Error("failed to list requests", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, requests)
}

// Credits handles GET /api/credits
func (h *StateHandler) Credits(w http.ResponseWriter, r *http.Request) {
	credits, err := h.store.Credits(r.Context())
	if err != nil {
		slog.Error("failed to read credits", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CreditsResponse{Count: credits})
}

// SetCredits handles PUT /api/credits
// Last writer wins. Negative counts are stored as 0.
func (h *StateHandler) SetCredits(w http.ResponseWriter, r *http.Request) {
	var req models.SetCreditsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid count")
		return
	}

	credits, err := h.store.SetCredits(r.Context(), req.Count)
	if err != nil {
		slog.Error("failed to write credits", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CreditsResponse{Count: credits})
}
