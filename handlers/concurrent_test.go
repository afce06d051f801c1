// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/payment"
	"github.com/danielhkuo/jukebox-party/testutil"
)

// TestConcurrentKioskSubmissions verifies that simultaneous kiosk requests
// are all queued without loss or duplication
func TestConcurrentKioskSubmissions(t *testing.T) {
	st, db := setupStore(t)
	handler := NewRequestHandler(st)

	numKiosks := 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numKiosks; i++ {
		wg.Add(1)
		go func(kiosk int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/api/request", models.SubmitRequest{
				SongID:   "bach-air",
				UserName: "Guest" + string(rune('A'+kiosk)),
			}, nil)
			w := httptest.NewRecorder()

			handler.Submit(w, req)

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numKiosks {
		t.Errorf("Expected %d successful submissions, got %d", numKiosks, successCount.Load())
	}
	if n := testutil.CountRequests(t, db); n != numKiosks {
		t.Errorf("Expected %d requests in database, got %d", numKiosks, n)
	}
}

// TestConcurrentPaidSubmissions races the webhook against the picker's
// return path for one checkout session. Exactly one request may be queued.
func TestConcurrentPaidSubmissions(t *testing.T) {
	st, db := setupStore(t)
	payments := NewPaymentHandler(st, &testutil.FakeGateway{Signature: "sig"})
	requests := NewRequestHandler(st)

	completion := payment.Completion{SessionID: "cs_race", SongID: "holst-mars", UserName: "Anna"}
	submit := models.SubmitRequest{SongID: "holst-mars", UserName: "Anna", PaymentRef: "cs_race"}

	var wg sync.WaitGroup
	var failures atomic.Int32
	ids := make(chan string, 20)

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			payments.Webhook(w, webhookRequest(t, completion, "sig"))
			if w.Code != http.StatusOK {
				failures.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			requests.Emergency(w, testutil.MakeRequest("POST", "/api/request/emergency", submit, nil))
			if w.Code != http.StatusOK {
				failures.Add(1)
				return
			}
			var resp models.SubmitResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				failures.Add(1)
				return
			}
			ids <- resp.Request.ID
		}()
	}

	wg.Wait()
	close(ids)

	if failures.Load() != 0 {
		t.Errorf("Expected every call to succeed, %d failed", failures.Load())
	}
	if n := testutil.CountRequests(t, db); n != 1 {
		t.Fatalf("Expected exactly 1 paid request, got %d", n)
	}

	first := ""
	for id := range ids {
		if first == "" {
			first = id
		}
		if id != first {
			t.Errorf("Return path saw different requests: %s vs %s", first, id)
		}
	}
}

// TestConcurrentRefills verifies that server-side refills are applied
// atomically, unlike terminal-side read-modify-write spends
func TestConcurrentRefills(t *testing.T) {
	st, db := setupStore(t)
	handler := NewAdminHandler(st)

	numRefills := 20
	var wg sync.WaitGroup
	for i := 0; i < numRefills; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			handler.Refill(w, testutil.MakeRequest("POST", "/api/admin/refill", models.RefillRequest{Amount: 1}, nil))
		}()
	}
	wg.Wait()

	if got := testutil.GetTestCredits(t, db); got != int64(numRefills) {
		t.Errorf("Expected %d credits, got %d", numRefills, got)
	}
}

// TestConcurrentAdvance fires several "next" presses at once. Each press
// completes at most one request.
func TestConcurrentAdvance(t *testing.T) {
	st, db := setupStore(t)
	handler := NewAdminHandler(st)

	for i := 0; i < 5; i++ {
		if _, err := st.CreateRequest(t.Context(), "bach-air", "", models.SourceKiosk); err != nil {
			t.Fatal(err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			handler.Next(w, httptest.NewRequest("POST", "/api/admin/next", nil))
		}()
	}
	wg.Wait()

	var completed int
	if err := db.QueryRow(`SELECT COUNT(*) FROM request WHERE is_completed = TRUE`).Scan(&completed); err != nil {
		t.Fatal(err)
	}
	if completed < 1 || completed > 3 {
		t.Errorf("Expected 1 to 3 completed requests, got %d", completed)
	}
	if n := testutil.CountRequests(t, db); n != 5 {
		t.Errorf("Advancing must not remove requests, got %d", n)
	}
}
