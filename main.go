// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielhkuo/jukebox-party/auth"
	"github.com/danielhkuo/jukebox-party/cliparse"
	"github.com/danielhkuo/jukebox-party/db"
	"github.com/danielhkuo/jukebox-party/middleware"
	"github.com/danielhkuo/jukebox-party/payment"
	"github.com/danielhkuo/jukebox-party/realtime"
	"github.com/danielhkuo/jukebox-party/router"
	"github.com/danielhkuo/jukebox-party/store"
)

func main() {
	var err error

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	if cfg.KioskMasterKey == "" {
		cfg.KioskMasterKey, err = auth.GenerateKioskSecret()
		if err != nil {
			slog.Error("kiosk secret generation failed", "error", err)
			os.Exit(1)
		}
		slog.Warn("KIOSK_MASTER_KEY not set; generated one for this run, kiosks must log in again after restart")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Realtime fan-out
	st := store.New(dbConn)
	hub := realtime.NewHub(st)
	go hub.Run(ctx)

	if cfg.DatabaseType == "postgres" {
		// Changes travel through Postgres so every instance hears them
		st.SetNotifier(realtime.NewPGNotifier(dbConn))
		go realtime.NewListener(cfg.DatabaseURL, hub).Run(ctx)
	} else {
		st.SetNotifier(hub)
	}

	if err := hub.Prime(ctx); err != nil {
		slog.Error("initial snapshot failed", "error", err)
		os.Exit(1)
	}

	// Payments are optional
	var gateway payment.Gateway
	if cfg.StripeSecretKey != "" {
		domain := cfg.DomainName
		if domain == "" {
			domain = "http://localhost:" + strconv.Itoa(cfg.Port)
			slog.Warn("DOMAIN_NAME not set; checkout returns to localhost", "domain", domain)
		}
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, domain)
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set; paid requests disabled")
	}

	// Create router
	mux, err := router.NewRouter(st, hub, cfg, gateway)
	if err != nil {
		slog.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
