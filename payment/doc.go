// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package payment creates Stripe checkout sessions for paid song requests and
verifies the payment webhook.

Amounts are in cents and never go below MinimumAmount (500). The session
carries the song id and dedication name as metadata, and returns the guest
to /picker?payment=success (with the session id) or /picker?payment=cancelled.
*/
package payment
