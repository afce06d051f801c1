// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/jukebox-party/auth"
	"github.com/danielhkuo/jukebox-party/cliparse"
	"github.com/danielhkuo/jukebox-party/handlers"
	"github.com/danielhkuo/jukebox-party/middleware"
	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/payment"
	"github.com/danielhkuo/jukebox-party/realtime"
	"github.com/danielhkuo/jukebox-party/store"
)

// NewRouter wires every route. gateway may be nil when payments are not
// configured.
func NewRouter(st *store.Store, hub *realtime.Hub, cfg cliparse.Config, gateway payment.Gateway) (*http.ServeMux, error) {
	passwords, err := auth.NewPasswordChecker(cfg.AdminPassword)
	if err != nil {
		return nil, err
	}
	guard := middleware.NewGuard(passwords, cfg.KioskMasterKey)

	mux := http.NewServeMux()

	// Initialize handlers
	libraryHandler := handlers.NewLibraryHandler(st)
	requestHandler := handlers.NewRequestHandler(st)
	paymentHandler := handlers.NewPaymentHandler(st, gateway)
	authHandler := handlers.NewAuthHandler(passwords, cfg.KioskMasterKey)
	stateHandler := handlers.NewStateHandler(st)
	adminHandler := handlers.NewAdminHandler(st)

	// Ops
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Catalog (public)
	mux.HandleFunc("GET /api/library", middleware.WithLogging(libraryHandler.List))

	// Submissions
	mux.HandleFunc("POST /api/request", middleware.WithLogging(guard.RequireKiosk(requestHandler.Submit)))
	mux.HandleFunc("POST /api/request/emergency", middleware.WithLogging(requestHandler.Emergency))

	// Payments
	mux.HandleFunc("POST /api/create-checkout-session", middleware.WithLogging(paymentHandler.CreateCheckoutSession))
	mux.HandleFunc("POST /api/webhook", middleware.WithLogging(paymentHandler.Webhook))

	// Operator login
	mux.HandleFunc("POST /api/auth/verify", middleware.WithLogging(authHandler.Verify))

	// Snapshots and the shared credit pool
	mux.HandleFunc("GET /api/queue", middleware.WithLogging(stateHandler.Queue))
	mux.HandleFunc("GET /api/credits", middleware.WithLogging(stateHandler.Credits))
	mux.HandleFunc("PUT /api/credits", middleware.WithLogging(guard.RequireAdminOrKiosk(stateHandler.SetCredits)))

	// Operator actions
	mux.HandleFunc("POST /api/admin/next", middleware.WithLogging(guard.RequireAdmin(adminHandler.Next)))
	mux.HandleFunc("POST /api/admin/previous", middleware.WithLogging(guard.RequireAdmin(adminHandler.Previous)))
	mux.HandleFunc("POST /api/admin/refill", middleware.WithLogging(guard.RequireAdmin(adminHandler.Refill)))
	mux.HandleFunc("POST /api/admin/requests/{id}/complete", middleware.WithLogging(guard.RequireAdmin(adminHandler.Complete)))
	mux.HandleFunc("POST /api/admin/requests/{id}/restore", middleware.WithLogging(guard.RequireAdmin(adminHandler.Restore)))
	mux.HandleFunc("DELETE /api/admin/requests/{id}", middleware.WithLogging(guard.RequireAdmin(adminHandler.Delete)))

	// Realtime push
	mux.HandleFunc("GET /ws/queue", middleware.WithLogging(hub.ServeWS(models.TopicQueue)))
	mux.HandleFunc("GET /ws/credits", middleware.WithLogging(hub.ServeWS(models.TopicCredits)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jukebox-party API v1"))
	})

	return mux, nil
}
