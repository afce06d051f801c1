// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the jukebox API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux, err := router.NewRouter(st, hub, cfg, gateway)

gateway may be nil; the payment endpoints then answer 503.

# Endpoints

Ops:

	GET /health
	GET /metrics

Catalog and submissions:

	GET  /api/library           - Whole catalog
	POST /api/request           - Kiosk submission (X-Kiosk-Secret)
	POST /api/request/emergency - Post-payment submission
	POST /api/create-checkout-session
	POST /api/webhook           - Payment provider callback

Operator login and shared state:

	POST /api/auth/verify - Password check, returns the kiosk secret
	GET  /api/queue
	GET  /api/credits
	PUT  /api/credits     - X-Admin-Password or X-Kiosk-Secret

Operator actions (X-Admin-Password):

	POST   /api/admin/next
	POST   /api/admin/previous
	POST   /api/admin/refill
	POST   /api/admin/requests/{id}/complete
	POST   /api/admin/requests/{id}/restore
	DELETE /api/admin/requests/{id}

Realtime:

	GET /ws/queue
	GET /ws/credits
*/
package router
