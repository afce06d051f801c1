// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/jukebox-party/cliparse"
	"github.com/danielhkuo/jukebox-party/db"
	"github.com/danielhkuo/jukebox-party/payment"
)

// TestDBURL opens a private in-memory SQLite database per connection pool
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseURL:         TestDBURL,
		DatabaseType:        "sqlite",
		AdminPassword:       "test-admin-password",
		KioskMasterKey:      "test-kiosk-key",
		StripeWebhookSecret: "whsec_test",
		DomainName:          "https://jukebox.test",
	}
}

// CreateTestSong inserts a catalog entry
func CreateTestSong(t *testing.T, conn *sql.DB, id, title, artist, category string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO song (id, title, artist, category, album_art_url)
		VALUES ($1, $2, $3, $4, $5)
	`, id, title, artist, category, "https://art.test/"+id+".jpg")
	if err != nil {
		t.Fatalf("Failed to create test song: %v", err)
	}
}

// CreateTestRequest inserts a queue entry for an existing song
func CreateTestRequest(t *testing.T, conn *sql.DB, id, songID string, createdAt time.Time, completed bool) {
	t.Helper()

	var completedAt *time.Time
	if completed {
		c := createdAt.Add(time.Minute)
		completedAt = &c
	}

	_, err := conn.Exec(`
		INSERT INTO request (id, song_id, title, artist, album_art_url, requested_by, is_completed, completed_at, created_at, source)
		SELECT $1, id, title, artist, album_art_url, 'Tester', $2, $3, $4, 'kiosk'
		FROM song WHERE id = $5
	`, id, completed, completedAt, createdAt.UTC(), songID)
	if err != nil {
		t.Fatalf("Failed to create test request: %v", err)
	}
}

// SetTestCredits overwrites the credit pool
func SetTestCredits(t *testing.T, conn *sql.DB, credits int64) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE credit_pool SET credits = $1 WHERE id = 1`, credits); err != nil {
		t.Fatalf("Failed to set test credits: %v", err)
	}
}

// GetTestCredits reads the credit pool
func GetTestCredits(t *testing.T, conn *sql.DB) int64 {
	t.Helper()

	var credits int64
	if err := conn.QueryRow(`SELECT credits FROM credit_pool WHERE id = 1`).Scan(&credits); err != nil {
		t.Fatalf("Failed to read test credits: %v", err)
	}
	return credits
}

// CountRequests returns the number of queue entries
func CountRequests(t *testing.T, conn *sql.DB) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM request`).Scan(&n); err != nil {
		t.Fatalf("Failed to count requests: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// FakeGateway is an in-memory payment.Gateway. The webhook signature is
// accepted when it equals Signature and the payload is JSON-decoded into a
// payment.Completion.
type FakeGateway struct {
	mu        sync.Mutex
	Checkouts []payment.Checkout

	URL       string
	Err       error
	Signature string
}

var _ payment.Gateway = (*FakeGateway)(nil)

func (g *FakeGateway) CreateSession(ctx context.Context, c payment.Checkout) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Checkouts = append(g.Checkouts, c)
	if g.Err != nil {
		return "", g.Err
	}
	return g.URL, nil
}

func (g *FakeGateway) ParseWebhook(payload []byte, signature string) (*payment.Completion, error) {
	if signature != g.Signature {
		return nil, payment.ErrInvalidSignature
	}
	var c payment.Completion
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, err
	}
	if c.SessionID == "" {
		return nil, nil
	}
	return &c, nil
}
