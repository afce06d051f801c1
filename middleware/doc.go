// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/library", middleware.WithLogging(handler))

Logs request start and completion with a short request_id, status and
duration_ms, and records jukebox_http_request_duration_seconds by route.
Websocket upgrades pass through.

# Guards

Operator endpoints require the X-Admin-Password header, kiosk submissions
the X-Kiosk-Secret header:

	guard := middleware.NewGuard(checker, cfg.KioskMasterKey)
	mux.HandleFunc("POST /api/admin/next", guard.RequireAdmin(h.Next))

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.SubmitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
