// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package namecheck cleans the optional dedication name attached to a song
// request. Flagged names become "" and the request goes out anonymous.
package namecheck
