// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package device

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "device.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStore(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}

			if err := s.Set(ctx, KeyKioskSecret, "one"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set(ctx, KeyKioskSecret, "two"); err != nil {
				t.Fatalf("Set() overwrite error = %v", err)
			}
			if v, err := s.Get(ctx, KeyKioskSecret); err != nil || v != "two" {
				t.Errorf("Get() = %q, %v, want two", v, err)
			}

			if err := s.Delete(ctx, KeyKioskSecret); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := s.Get(ctx, KeyKioskSecret); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after delete error = %v", err)
			}
			if err := s.Delete(ctx, KeyKioskSecret); err != nil {
				t.Errorf("Delete() of missing key error = %v", err)
			}
		})
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.db")
	ctx := context.Background()

	s, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	if err := s.Set(ctx, KeyAdminAuth, "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	s.Close()

	s, err = OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if v, err := s.Get(ctx, KeyAdminAuth); err != nil || v != "true" {
		t.Errorf("Get() = %q, %v after reopen", v, err)
	}
}

func TestResolve(t *testing.T) {
	const secret = "configured-secret"

	tests := []struct {
		name   string
		stored map[string]string
		policy Policy
		want   Mode
	}{
		{
			name:   "guest",
			stored: map[string]string{},
			want:   Mode{},
		},
		{
			name:   "operator",
			stored: map[string]string{KeyAdminAuth: "true"},
			want:   Mode{Operator: true},
		},
		{
			name:   "admin flag must be true",
			stored: map[string]string{KeyAdminAuth: "yes"},
			want:   Mode{},
		},
		{
			name:   "strict matching token",
			stored: map[string]string{KeyKioskSecret: secret},
			want:   Mode{Kiosk: true, KioskToken: secret},
		},
		{
			name:   "strict stale token",
			stored: map[string]string{KeyKioskSecret: "old-secret"},
			want:   Mode{},
		},
		{
			name:   "presence accepts any token",
			stored: map[string]string{KeyKioskSecret: "old-secret"},
			policy: PolicyPresence,
			want:   Mode{Kiosk: true, KioskToken: "old-secret"},
		},
		{
			name:   "presence needs a token",
			stored: map[string]string{KeyKioskSecret: ""},
			policy: PolicyPresence,
			want:   Mode{},
		},
		{
			name:   "operator and kiosk",
			stored: map[string]string{KeyAdminAuth: "true", KeyKioskSecret: secret},
			want:   Mode{Operator: true, Kiosk: true, KioskToken: secret},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := NewMemoryStore()
			for k, v := range tt.stored {
				s.Set(ctx, k, v)
			}
			r := &Resolver{Store: s, Policy: tt.policy, KioskSecret: secret}

			got, err := r.Resolve(ctx)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

type fakeVerifier struct {
	password string
	secret   string
	err      error
}

func (f fakeVerifier) Verify(ctx context.Context, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if password != f.password {
		return "", ErrUnauthorized
	}
	return f.secret, nil
}

func TestLoginOperator(t *testing.T) {
	ctx := context.Background()
	v := fakeVerifier{password: "letmein", secret: "kiosk-secret"}

	t.Run("wrong password leaves store untouched", func(t *testing.T) {
		s := NewMemoryStore()
		r := &Resolver{Store: s, KioskSecret: "kiosk-secret"}

		if err := r.LoginOperator(ctx, v, "nope"); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("LoginOperator() error = %v, want ErrUnauthorized", err)
		}
		if _, err := s.Get(ctx, KeyAdminAuth); !errors.Is(err, ErrNotFound) {
			t.Error("admin flag should not be stored")
		}
	})

	t.Run("transport failure is not unauthorized", func(t *testing.T) {
		r := &Resolver{Store: NewMemoryStore()}
		err := r.LoginOperator(ctx, fakeVerifier{err: errors.New("offline")}, "letmein")
		if err == nil || errors.Is(err, ErrUnauthorized) {
			t.Errorf("LoginOperator() error = %v", err)
		}
	})

	t.Run("success enables both modes", func(t *testing.T) {
		s := NewMemoryStore()
		r := &Resolver{Store: s, KioskSecret: "kiosk-secret"}

		if err := r.LoginOperator(ctx, v, "letmein"); err != nil {
			t.Fatalf("LoginOperator() error = %v", err)
		}
		mode, err := r.Resolve(ctx)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !mode.Operator || !mode.Kiosk || mode.KioskToken != "kiosk-secret" {
			t.Errorf("Resolve() = %+v", mode)
		}
	})
}

func TestAuthorizeKiosk(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		configured string
		presented  string
		wantErr    error
	}{
		{"match", "abc123", "abc123", nil},
		{"mismatch", "abc123", "abc124", ErrUnauthorized},
		{"empty presented", "abc123", "", ErrUnauthorized},
		{"nothing configured", "", "", ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore()
			r := &Resolver{Store: s, KioskSecret: tt.configured}

			err := r.AuthorizeKiosk(ctx, tt.presented)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AuthorizeKiosk() error = %v, want %v", err, tt.wantErr)
			}

			_, getErr := s.Get(ctx, KeyKioskSecret)
			stored := getErr == nil
			if stored != (tt.wantErr == nil) {
				t.Errorf("stored = %v, want %v", stored, tt.wantErr == nil)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"strict", PolicyStrict, false},
		{"", PolicyStrict, false},
		{"presence", PolicyPresence, false},
		{"lax", PolicyStrict, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
