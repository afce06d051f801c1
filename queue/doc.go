// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package queue turns the live request feed into what the projector and the
operator console show.

# Projection

Project splits requests into an active list (oldest request first, ties on
id) and a completed list (latest completion first, at most three). The head
of the active list is now playing; the rest is up next.

# Operator

Operator wraps the console actions: Complete, Advance, Restore, Previous and
Remove. Remove only sends the delete after the confirm callback agrees.
*/
package queue
