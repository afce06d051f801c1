// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the jukebox API.

# Handler Types

Each handler is a struct holding the store and whatever else it needs:

  - LibraryHandler: Catalog listing
  - RequestHandler: Kiosk and post-payment submissions
  - PaymentHandler: Checkout sessions and the payment webhook
  - AuthHandler: Operator password check
  - StateHandler: Queue and credit snapshots, credit writes
  - AdminHandler: Next, previous, refill, complete, restore, delete

Handlers are created via constructor functions:

	requestHandler := handlers.NewRequestHandler(st)

Authorization is applied by middleware.Guard in the router, not here.

# Submissions

	POST /api/request            → Submit (kiosk, X-Kiosk-Secret)
	POST /api/request/emergency  → Emergency (after checkout)
	POST /api/webhook            → Webhook (checkout.session.completed)

Names are sanitized server-side with namecheck. A paid request carries the
checkout session id; the webhook and the emergency path both go through
store.CreatePaidRequest, so each checkout queues one request no matter
which arrives first.

# Errors

Store sentinels map to status codes: unknown songs and requests are 404,
an empty queue or history is 404, anything else is 500. Bodies are
models.ErrorResponse.
*/
package handlers
