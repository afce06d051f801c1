// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides operator and kiosk authentication plus ID helpers.

# Operator Password

The operator password is hashed with bcrypt at startup:

	checker, err := auth.NewPasswordChecker(cfg.AdminPassword)
	err = checker.Check(presented) // ErrInvalidPassword on mismatch

# Kiosk Secrets

Kiosk terminals present the master key in the X-Kiosk-Secret header.
Comparison is constant-time:

	err := auth.ValidateKioskSecret(presented, cfg.KioskMasterKey)

When no master key is configured the server generates one with
GenerateKioskSecret and hands it out on operator login.

# IDs

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters

Catalog slugs derived from artist and title:

	auth.Slug("Bach", "Air (on the G String)") // "bach-air-on-the-g-string"
*/
package auth
