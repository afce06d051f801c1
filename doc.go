// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the jukebox API server.

Jukebox Party takes live song requests at an event. Guests pay through a
checkout page, kiosk terminals spend credits from a shared pool, the stage
projector shows the queue and an operator console runs it.

# Starting the Server

	DATABASE_URL=jukebox.db ADMIN_PASSWORD=... go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -p 3318

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - ADMIN_PASSWORD (-admin-password): Operator console password

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - KIOSK_MASTER_KEY (-kiosk-key): Secret kiosks present; generated per run when unset
  - DOMAIN_NAME (-domain): Public base URL for checkout redirects
  - STRIPE_SECRET_KEY, STRIPE_WEBHOOK_SECRET: Enable paid requests

# Architecture

  - handlers: HTTP request handlers (library, requests, payments, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, credential guards, JSON helpers
  - store: Catalog, queue and credit pool persistence
  - realtime: Websocket fan-out of queue and credit snapshots
  - payment: Stripe checkout sessions and webhook verification
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

Terminal-side logic lives in namecheck, catalog, queue, credits, device,
reconcile, notice, picker and client, used by the programs under cmd/.
*/
package main
