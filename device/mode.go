// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/jukebox-party/auth"
)

var ErrUnauthorized = errors.New("unauthorized")

// Policy decides what a stored kiosk token must look like to count.
type Policy int

const (
	// PolicyStrict requires the stored token to equal the configured secret.
	PolicyStrict Policy = iota
	// PolicyPresence accepts any stored token.
	PolicyPresence
)

// ParsePolicy maps "strict" and "presence" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "strict", "":
		return PolicyStrict, nil
	case "presence":
		return PolicyPresence, nil
	}
	return PolicyStrict, fmt.Errorf("unknown kiosk policy %q", s)
}

func (p Policy) String() string {
	if p == PolicyPresence {
		return "presence"
	}
	return "strict"
}

// Mode is what a terminal may do. A terminal that is neither operator nor
// kiosk is a guest.
type Mode struct {
	Operator   bool
	Kiosk      bool
	KioskToken string
}

// Verifier checks an operator password with the server and returns the
// kiosk secret it hands out. A wrong password yields ErrUnauthorized.
type Verifier interface {
	Verify(ctx context.Context, password string) (string, error)
}

type Resolver struct {
	Store       Store
	Policy      Policy
	KioskSecret string
}

// Resolve reads the stored credentials once. Views call it at startup and
// keep the result until they are rebuilt.
func (r *Resolver) Resolve(ctx context.Context) (Mode, error) {
	var m Mode

	flag, err := r.get(ctx, KeyAdminAuth)
	if err != nil {
		return Mode{}, err
	}
	m.Operator = flag == "true"

	token, err := r.get(ctx, KeyKioskSecret)
	if err != nil {
		return Mode{}, err
	}
	if token == "" {
		return m, nil
	}

	switch r.Policy {
	case PolicyPresence:
		m.Kiosk = true
	default:
		m.Kiosk = auth.ValidateKioskSecret(token, r.KioskSecret) == nil
	}
	if m.Kiosk {
		m.KioskToken = token
	}
	return m, nil
}

func (r *Resolver) get(ctx context.Context, key string) (string, error) {
	v, err := r.Store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// LoginOperator verifies the password and, on success, marks this terminal
// as an operator console and stores the returned kiosk secret.
func (r *Resolver) LoginOperator(ctx context.Context, v Verifier, password string) error {
	secret, err := v.Verify(ctx, password)
	if errors.Is(err, ErrUnauthorized) {
		slog.Warn("Operator login rejected")
		return ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}

	if err := r.Store.Set(ctx, KeyAdminAuth, "true"); err != nil {
		return err
	}
	if secret != "" {
		if err := r.Store.Set(ctx, KeyKioskSecret, secret); err != nil {
			return err
		}
	}
	slog.Info("Operator logged in")
	return nil
}

// AuthorizeKiosk stores secret if it matches the configured kiosk secret.
func (r *Resolver) AuthorizeKiosk(ctx context.Context, secret string) error {
	if err := auth.ValidateKioskSecret(secret, r.KioskSecret); err != nil {
		slog.Warn("Kiosk authorization rejected")
		return ErrUnauthorized
	}
	if err := r.Store.Set(ctx, KeyKioskSecret, secret); err != nil {
		return err
	}
	slog.Info("Kiosk authorized")
	return nil
}
