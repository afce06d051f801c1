// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/jukebox-party/middleware"
	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/store"
)

// AdminHandler serves operator queue and credit actions. Every route is
// behind Guard.RequireAdmin.
type AdminHandler struct {
	store *store.Store
}

func NewAdminHandler(st *store.Store) *AdminHandler {
	return &AdminHandler{store: st}
}

func (h *AdminHandler) writeStoreError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, store.ErrRequestNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Request not found")
	case errors.Is(err, store.ErrQueueEmpty):
		middleware.ErrorResponse(w, http.StatusNotFound, "Queue is empty")
	case errors.Is(err, store.ErrNoCompleted):
		middleware.ErrorResponse(w, http.StatusNotFound, "No previous songs found")
	default:
		slog.Error("admin action failed", "action", action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

// Next handles POST /api/admin/next
// Completes the request named by docId, or the one now playing when the
// body is empty.
func (h *AdminHandler) Next(w http.ResponseWriter, r *http.Request) {
	var req models.SetCompletedRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	id := req.DocID
	if id == "" {
		current, err := h.store.NowPlaying(r.Context())
		if err != nil {
			h.writeStoreError(w, err, "next")
			return
		}
		id = current.ID
	}

	if err := h.store.SetCompleted(r.Context(), id, true); err != nil {
		h.writeStoreError(w, err, "next")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "Advanced to next song"})
}

// Previous handles POST /api/admin/previous
// Restores the most recently completed request
func (h *AdminHandler) Previous(w http.ResponseWriter, r *http.Request) {
	last, err := h.store.LatestCompleted(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "previous")
		return
	}
	if err := h.store.SetCompleted(r.Context(), last.ID, false); err != nil {
		h.writeStoreError(w, err, "previous")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "Reverted"})
}

// Refill handles POST /api/admin/refill
// Adds amount (may be negative) to the credit pool, flooring at 0
func (h *AdminHandler) Refill(w http.ResponseWriter, r *http.Request) {
	var req models.RefillRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	credits, err := h.store.AddCredits(r.Context(), req.Amount)
	if err != nil {
		h.writeStoreError(w, err, "refill")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CreditsResponse{Count: credits})
}

// Complete handles POST /api/admin/requests/{id}/complete
func (h *AdminHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, true)
}

// Restore handles POST /api/admin/requests/{id}/restore
func (h *AdminHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, false)
}

func (h *AdminHandler) setCompleted(w http.ResponseWriter, r *http.Request, completed bool) {
	id := r.PathValue("id")
	if err := h.store.SetCompleted(r.Context(), id, completed); err != nil {
		h.writeStoreError(w, err, "set completed")
		return
	}
	status := "Completed"
	if !completed {
		status = "Restored"
	}
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: status})
}

// Delete handles DELETE /api/admin/requests/{id}
// Permanent; the console asks for confirmation before calling it
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteRequest(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
