// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package credits tracks the shared kiosk credit pool from one terminal.
//
// The pool is a single counter. Terminals observe it through the credits
// feed and write absolute values back, so spends are not atomic across
// terminals: two kiosks spending the last credit at once both succeed.
package credits
