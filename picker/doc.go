// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package picker submits song requests from a picker terminal. Kiosks
// spend a credit and submit directly; guests go through checkout via
// package reconcile.
package picker
