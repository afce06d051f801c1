// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package reconcile carries a guest's paid request across the checkout
redirect.

# Flow

	amount := reconcile.ResolveAmount(input)   // blank or < 5 becomes 5
	url, err := r.Stage(ctx, songID, name, amount)
	// send the guest to url; they come back to /picker?payment=...
	clean, err := r.Return(ctx, location)
	// replace the current location with clean

Stage writes the pending request to the device store before asking for a
checkout session, so the request survives the round trip. On
payment=success, Return submits it once through the emergency endpoint,
passing the checkout session id so the server can match it against the
webhook. The staged record is deleted only after the submission succeeds.
A cancelled checkout keeps the record.
*/
package reconcile
