// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadEnvFile never overrides variables that are already set.

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type (sqlite or postgres)
	-domain          Public base URL for checkout redirects
	-admin-password  Operator password
	-kiosk-key       Kiosk master key

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, DOMAIN_NAME,
	ADMIN_PASSWORD, KIOSK_MASTER_KEY,
	STRIPE_SECRET_KEY, STRIPE_WEBHOOK_SECRET

CLI flags take precedence over environment variables. The Stripe keys are
environment-only.

# Validation

ParseFlags returns an error when DATABASE_URL or ADMIN_PASSWORD is missing
or DATABASE_TYPE is not sqlite or postgres.
*/
package cliparse
