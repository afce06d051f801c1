// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/testutil"
)

type recordingNotifier struct {
	topics []string
}

func (n *recordingNotifier) Notify(topic string) {
	n.topics = append(n.topics, topic)
}

func TestCreateRequestCopiesSong(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	testutil.CreateTestSong(t, db, "bach-air", "Air on the G String", "Bach", "Baroque")

	s := New(db)
	notifier := &recordingNotifier{}
	s.SetNotifier(notifier)

	req, err := s.CreateRequest(context.Background(), "bach-air", "Anna", models.SourceKiosk)
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	if req.ID == "" {
		t.Error("Expected generated request ID")
	}
	if req.Title != "Air on the G String" || req.Artist != "Bach" {
		t.Errorf("Song fields not copied: %+v", req)
	}
	if req.IsCompleted {
		t.Error("New request should not be completed")
	}
	if len(notifier.topics) != 1 || notifier.topics[0] != models.TopicQueue {
		t.Errorf("Expected one queue notification, got %v", notifier.topics)
	}

	requests, err := s.ListRequests(context.Background())
	if err != nil {
		t.Fatalf("ListRequests() error = %v", err)
	}
	if len(requests) != 1 || requests[0].RequestedBy != "Anna" {
		t.Errorf("Unexpected requests: %+v", requests)
	}
}

func TestCreateRequestUnknownSong(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	_, err := New(db).CreateRequest(context.Background(), "missing", "", models.SourceKiosk)
	if !errors.Is(err, ErrSongNotFound) {
		t.Errorf("Expected ErrSongNotFound, got %v", err)
	}
	if n := testutil.CountRequests(t, db); n != 0 {
		t.Errorf("Expected no requests, got %d", n)
	}
}

func TestSetCompletedAndLatest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	base := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	testutil.CreateTestSong(t, db, "s1", "Song One", "Artist", "Pop")
	testutil.CreateTestRequest(t, db, "r1", "s1", base, false)
	testutil.CreateTestRequest(t, db, "r2", "s1", base.Add(time.Minute), false)

	s := New(db)
	clock := base.Add(time.Hour)
	s.now = func() time.Time { return clock }

	ctx := context.Background()
	if err := s.SetCompleted(ctx, "r2", true); err != nil {
		t.Fatalf("SetCompleted(r2) error = %v", err)
	}
	clock = clock.Add(time.Minute)
	if err := s.SetCompleted(ctx, "r1", true); err != nil {
		t.Fatalf("SetCompleted(r1) error = %v", err)
	}

	latest, err := s.LatestCompleted(ctx)
	if err != nil {
		t.Fatalf("LatestCompleted() error = %v", err)
	}
	if latest.ID != "r1" {
		t.Errorf("Expected r1 (completed last), got %s", latest.ID)
	}
	if latest.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}

	if err := s.SetCompleted(ctx, "r1", false); err != nil {
		t.Fatalf("SetCompleted(r1, false) error = %v", err)
	}
	latest, _ = s.LatestCompleted(ctx)
	if latest.ID != "r2" {
		t.Errorf("Expected r2 after restoring r1, got %s", latest.ID)
	}

	if err := s.SetCompleted(ctx, "nope", true); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("Expected ErrRequestNotFound, got %v", err)
	}
}

func TestLatestCompletedEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	if _, err := New(db).LatestCompleted(context.Background()); !errors.Is(err, ErrNoCompleted) {
		t.Errorf("Expected ErrNoCompleted, got %v", err)
	}
}

func TestDeleteRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	testutil.CreateTestSong(t, db, "s1", "Song One", "Artist", "Pop")
	testutil.CreateTestRequest(t, db, "r1", "s1", time.Now(), false)

	s := New(db)
	if err := s.DeleteRequest(context.Background(), "r1"); err != nil {
		t.Fatalf("DeleteRequest() error = %v", err)
	}
	if n := testutil.CountRequests(t, db); n != 0 {
		t.Errorf("Expected 0 requests, got %d", n)
	}
	if err := s.DeleteRequest(context.Background(), "r1"); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("Expected ErrRequestNotFound on second delete, got %v", err)
	}
}

func TestCredits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	tests := []struct {
		name string
		op   func() (int64, error)
		want int64
	}{
		{"set positive", func() (int64, error) { return s.SetCredits(ctx, 5) }, 5},
		{"add", func() (int64, error) { return s.AddCredits(ctx, 3) }, 8},
		{"subtract floors at zero", func() (int64, error) { return s.AddCredits(ctx, -100) }, 0},
		{"set negative stores zero", func() (int64, error) { return s.SetCredits(ctx, -4) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
			if stored := testutil.GetTestCredits(t, db); stored != tt.want {
				t.Errorf("stored %d, want %d", stored, tt.want)
			}
		})
	}
}

func TestAddCreditsSaturates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	if _, err := s.SetCredits(ctx, 5); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		delta int64
		want  int64
	}{
		{"overflowing refill caps", math.MaxInt64, math.MaxInt64},
		{"refill at the cap stays", 1, math.MaxInt64},
		{"large debit", math.MinInt64, 0},
		{"refill after reset", 2, 2},
	}

	for _, tt := range tests {
		got, err := s.AddCredits(ctx, tt.delta)
		if err != nil {
			t.Fatalf("%s: AddCredits(%d) error = %v", tt.name, tt.delta, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
		read, err := s.Credits(ctx)
		if err != nil {
			t.Fatalf("%s: pool unreadable: %v", tt.name, err)
		}
		if read != tt.want {
			t.Errorf("%s: read back %d, want %d", tt.name, read, tt.want)
		}
	}

	var kind string
	if err := db.QueryRow(`SELECT typeof(credits) FROM credit_pool WHERE id = 1`).Scan(&kind); err != nil {
		t.Fatal(err)
	}
	if kind != "integer" {
		t.Errorf("credits stored as %s, want integer", kind)
	}
}

func TestSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	testutil.CreateTestSong(t, db, "s1", "Song One", "Artist", "Pop")
	testutil.CreateTestRequest(t, db, "r1", "s1", time.Now(), false)
	testutil.SetTestCredits(t, db, 7)

	s := New(db)
	ctx := context.Background()

	queue, err := s.Snapshot(ctx, models.TopicQueue)
	if err != nil {
		t.Fatalf("Snapshot(queue) error = %v", err)
	}
	if len(queue.Requests) != 1 {
		t.Errorf("Expected 1 request, got %d", len(queue.Requests))
	}

	credits, err := s.Snapshot(ctx, models.TopicCredits)
	if err != nil {
		t.Fatalf("Snapshot(credits) error = %v", err)
	}
	if credits.Credits != 7 {
		t.Errorf("Expected 7 credits, got %d", credits.Credits)
	}

	if _, err := s.Snapshot(ctx, "bogus"); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("Expected ErrUnknownTopic, got %v", err)
	}
}

func TestUpsertSong(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	s := New(db)
	ctx := context.Background()
	song := models.Song{ID: "x", Title: "Old", Artist: "A", Category: "Pop"}
	if err := s.UpsertSong(ctx, song); err != nil {
		t.Fatal(err)
	}
	song.Title = "New"
	if err := s.UpsertSong(ctx, song); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSong(ctx, "x")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "New" {
		t.Errorf("Expected updated title, got %q", got.Title)
	}

	songs, _ := s.ListSongs(ctx)
	if len(songs) != 1 {
		t.Errorf("Expected 1 song, got %d", len(songs))
	}
}

func TestCreatePaidRequestOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	testutil.CreateTestSong(t, db, "s1", "Song One", "Artist", "Pop")
	s := New(db)
	ctx := context.Background()

	first, created, err := s.CreatePaidRequest(ctx, "cs_test_1", "s1", "Anna", models.SourceStripe)
	if err != nil {
		t.Fatalf("CreatePaidRequest() error = %v", err)
	}
	if !created {
		t.Error("Expected first call to create the request")
	}

	second, created, err := s.CreatePaidRequest(ctx, "cs_test_1", "s1", "Anna", models.SourceEmergency)
	if err != nil {
		t.Fatalf("CreatePaidRequest() second error = %v", err)
	}
	if created {
		t.Error("Expected second call to reuse the request")
	}
	if second.ID != first.ID || second.Source != models.SourceStripe {
		t.Errorf("Expected original request back, got %+v", second)
	}

	// Without a reference every call queues
	if _, created, _ := s.CreatePaidRequest(ctx, "", "s1", "Anna", models.SourceEmergency); !created {
		t.Error("Expected unreferenced request to be created")
	}
	if _, created, _ := s.CreatePaidRequest(ctx, "", "s1", "Anna", models.SourceEmergency); !created {
		t.Error("Expected unreferenced request to be created")
	}

	if n := testutil.CountRequests(t, db); n != 3 {
		t.Errorf("Expected 3 requests, got %d", n)
	}
}

func TestNowPlaying(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	s := New(db)
	ctx := context.Background()
	if _, err := s.NowPlaying(ctx); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Expected ErrQueueEmpty, got %v", err)
	}

	base := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	testutil.CreateTestSong(t, db, "s1", "Song One", "Artist", "Pop")
	testutil.CreateTestRequest(t, db, "done", "s1", base, true)
	testutil.CreateTestRequest(t, db, "second", "s1", base.Add(2*time.Minute), false)
	testutil.CreateTestRequest(t, db, "first", "s1", base.Add(time.Minute), false)

	req, err := s.NowPlaying(ctx)
	if err != nil {
		t.Fatalf("NowPlaying() error = %v", err)
	}
	if req.ID != "first" {
		t.Errorf("Expected oldest active request, got %s", req.ID)
	}
}
