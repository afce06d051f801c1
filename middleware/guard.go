// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/jukebox-party/auth"
)

const (
	AdminPasswordHeader = "X-Admin-Password"
	KioskSecretHeader   = "X-Kiosk-Secret"
)

// Guard checks operator and kiosk credentials on incoming requests
type Guard struct {
	passwords   *auth.PasswordChecker
	kioskSecret string
}

func NewGuard(passwords *auth.PasswordChecker, kioskSecret string) *Guard {
	return &Guard{passwords: passwords, kioskSecret: kioskSecret}
}

func (g *Guard) IsAdmin(r *http.Request) bool {
	return g.passwords.Check(r.Header.Get(AdminPasswordHeader)) == nil
}

func (g *Guard) IsKiosk(r *http.Request) bool {
	return auth.ValidateKioskSecret(r.Header.Get(KioskSecretHeader), g.kioskSecret) == nil
}

// RequireAdmin rejects requests without the operator password
func (g *Guard) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.IsAdmin(r) {
			slog.Warn("admin authorization failed", "path", r.URL.Path, "remote", GetClientIP(r))
			ErrorResponse(w, http.StatusUnauthorized, "Unauthorized access")
			return
		}
		next(w, r)
	}
}

// RequireKiosk rejects requests without a valid kiosk secret
func (g *Guard) RequireKiosk(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.IsKiosk(r) {
			slog.Warn("kiosk authorization failed", "path", r.URL.Path, "remote", GetClientIP(r))
			ErrorResponse(w, http.StatusForbidden, "Not an authorized kiosk")
			return
		}
		next(w, r)
	}
}

// RequireAdminOrKiosk accepts either credential
func (g *Guard) RequireAdminOrKiosk(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.IsKiosk(r) && !g.IsAdmin(r) {
			slog.Warn("terminal authorization failed", "path", r.URL.Path, "remote", GetClientIP(r))
			ErrorResponse(w, http.StatusUnauthorized, "Unauthorized access")
			return
		}
		next(w, r)
	}
}
