// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notice is the single transient message slot the terminals show.
// A new notice replaces the old one; each dismisses itself after its TTL.
package notice
