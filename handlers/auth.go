// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/jukebox-party/auth"
	"github.com/danielhkuo/jukebox-party/middleware"
	"github.com/danielhkuo/jukebox-party/models"
)

type AuthHandler struct {
	passwords   *auth.PasswordChecker
	kioskSecret string
}

func NewAuthHandler(passwords *auth.PasswordChecker, kioskSecret string) *AuthHandler {
	return &AuthHandler{passwords: passwords, kioskSecret: kioskSecret}
}

// Verify handles POST /api/auth/verify
// On a correct operator password returns the kiosk secret for the terminal
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.JSONResponse(w, http.StatusBadRequest, models.VerifyResponse{Valid: false})
		return
	}

	if err := h.passwords.Check(req.Password); err != nil {
		slog.Warn("operator login failed", "remote", middleware.GetClientIP(r))
		middleware.JSONResponse(w, http.StatusUnauthorized, models.VerifyResponse{Valid: false})
		return
	}

	slog.Info("operator login", "remote", middleware.GetClientIP(r))
	middleware.JSONResponse(w, http.StatusOK, models.VerifyResponse{
		Valid:       true,
		KioskSecret: h.kioskSecret,
	})
}
