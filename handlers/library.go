// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/jukebox-party/middleware"
	"github.com/danielhkuo/jukebox-party/store"
)

type LibraryHandler struct {
	store *store.Store
}

func NewLibraryHandler(st *store.Store) *LibraryHandler {
	return &LibraryHandler{store: st}
}

// List handles GET /api/library
// Returns the whole catalog in one response
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	songs, err := h.store.ListSongs(r.Context())
	if err != nil {
		slog.Error("failed to list songs", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, songs)
}
