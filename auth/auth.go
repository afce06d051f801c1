// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidKioskSecret = errors.New("invalid kiosk secret")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateKioskSecret creates a random secret for kiosk terminals.
// Used when no master key is configured.
func GenerateKioskSecret() (string, error) {
	b := make([]byte, 24) // 192 bits
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate kiosk secret: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// PasswordChecker holds the bcrypt hash of the operator password so the
// plaintext does not stay in memory after startup.
type PasswordChecker struct {
	hash []byte
}

func NewPasswordChecker(password string) (*PasswordChecker, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &PasswordChecker{hash: hash}, nil
}

// Check returns ErrInvalidPassword on mismatch
func (p *PasswordChecker) Check(password string) error {
	if password == "" {
		return ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword(p.hash, []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateKioskSecret compares a presented secret with the configured one
// in constant time. An empty configured secret never validates.
func ValidateKioskSecret(presented, expected string) error {
	if expected == "" || !hmac.Equal([]byte(presented), []byte(expected)) {
		return ErrInvalidKioskSecret
	}
	return nil
}

// Slug builds a catalog id from artist and title, e.g.
// "Bach", "Air (on the G String)" -> "bach-air-on-the-g-string".
func Slug(artist, title string) string {
	cleaner := strings.NewReplacer(
		"/", "-", " ", "-", "(", "", ")", "", ",", "",
		".", "", "'", "", "#", "sharp", "♭", "flat",
		":", "", "!", "", "?", "", "&", "and",
	)
	combined := strings.ToLower(artist) + "-" + strings.ToLower(title)
	result := cleaner.Replace(combined)
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	return strings.Trim(result, "-")
}
