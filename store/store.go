// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielhkuo/jukebox-party/models"
)

var (
	ErrSongNotFound    = errors.New("song not found")
	ErrRequestNotFound = errors.New("request not found")
	ErrNoCompleted     = errors.New("no completed requests")
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrUnknownTopic    = errors.New("unknown topic")
)

var (
	requestsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jukebox_requests_created_total",
		Help: "Requests added to the queue, labeled by source",
	}, []string{"source"})

	creditsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jukebox_credits",
		Help: "Last written value of the shared credit pool",
	})
)

// Notifier is told which topic changed after every successful mutation.
type Notifier interface {
	Notify(topic string)
}

// Store is the single source of truth for the catalog, the queue and the
// credit pool.
type Store struct {
	db       *sql.DB
	notifier Notifier
	now      func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// SetNotifier installs the change notifier. Call before serving traffic.
func (s *Store) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Store) notify(topic string) {
	if s.notifier != nil {
		s.notifier.Notify(topic)
	}
}

// ListSongs returns the full catalog ordered by category, artist and title.
func (s *Store) ListSongs(ctx context.Context) ([]models.Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, artist, category, album_art_url
		FROM song
		ORDER BY category, artist, title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		var song models.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Category, &song.AlbumArtURL); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

func (s *Store) GetSong(ctx context.Context, id string) (models.Song, error) {
	var song models.Song
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, artist, category, album_art_url
		FROM song WHERE id = $1
	`, id).Scan(&song.ID, &song.Title, &song.Artist, &song.Category, &song.AlbumArtURL)
	if err == sql.ErrNoRows {
		return models.Song{}, ErrSongNotFound
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("failed to query song: %w", err)
	}
	return song, nil
}

// UpsertSong inserts or replaces a catalog entry.
func (s *Store) UpsertSong(ctx context.Context, song models.Song) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO song (id, title, artist, category, album_art_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		   SET title = excluded.title,
		       artist = excluded.artist,
		       category = excluded.category,
		       album_art_url = excluded.album_art_url
	`, song.ID, song.Title, song.Artist, song.Category, song.AlbumArtURL)
	if err != nil {
		return fmt.Errorf("failed to upsert song %s: %w", song.ID, err)
	}
	return nil
}

// CreateRequest queues a song, copying its display fields into the request.
func (s *Store) CreateRequest(ctx context.Context, songID, userName, source string) (models.Request, error) {
	song, err := s.GetSong(ctx, songID)
	if err != nil {
		return models.Request{}, err
	}
	return s.insertRequest(ctx, song, userName, source, nil)
}

// CreatePaidRequest queues a song for a checkout session. Both the payment
// webhook and the picker's return path call it; the first caller queues the
// request and later callers get the existing one back with created=false.
func (s *Store) CreatePaidRequest(ctx context.Context, paymentRef, songID, userName, source string) (req models.Request, created bool, err error) {
	if paymentRef == "" {
		req, err = s.CreateRequest(ctx, songID, userName, source)
		return req, err == nil, err
	}

	if existing, err := s.requestByPaymentRef(ctx, paymentRef); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrRequestNotFound) {
		return models.Request{}, false, err
	}

	song, err := s.GetSong(ctx, songID)
	if err != nil {
		return models.Request{}, false, err
	}

	req, err = s.insertRequest(ctx, song, userName, source, &paymentRef)
	if err != nil {
		// Lost a race with the other entry point
		if existing, lookupErr := s.requestByPaymentRef(ctx, paymentRef); lookupErr == nil {
			return existing, false, nil
		}
		return models.Request{}, false, err
	}
	return req, true, nil
}

func (s *Store) insertRequest(ctx context.Context, song models.Song, userName, source string, paymentRef *string) (models.Request, error) {
	req := models.Request{
		ID:          uuid.NewString(),
		SongID:      song.ID,
		Title:       song.Title,
		Artist:      song.Artist,
		AlbumArtURL: song.AlbumArtURL,
		RequestedBy: userName,
		Timestamp:   s.now(),
		Source:      source,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request (id, song_id, title, artist, album_art_url, requested_by, is_completed, created_at, source, payment_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, req.ID, req.SongID, req.Title, req.Artist, req.AlbumArtURL, req.RequestedBy, false, req.Timestamp, req.Source, paymentRef)
	if err != nil {
		return models.Request{}, fmt.Errorf("failed to insert request: %w", err)
	}

	requestsCreated.WithLabelValues(source).Inc()
	slog.Info("request queued", "request_id", req.ID, "song_id", song.ID, "source", source)
	s.notify(models.TopicQueue)
	return req, nil
}

const requestColumns = `id, song_id, title, artist, album_art_url, requested_by, is_completed, completed_at, created_at, source`

func scanRequest(row interface{ Scan(...any) error }) (models.Request, error) {
	var (
		req         models.Request
		completedAt sql.NullTime
	)
	err := row.Scan(&req.ID, &req.SongID, &req.Title, &req.Artist, &req.AlbumArtURL,
		&req.RequestedBy, &req.IsCompleted, &completedAt, &req.Timestamp, &req.Source)
	if err != nil {
		return models.Request{}, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		req.CompletedAt = &t
	}
	return req, nil
}

func (s *Store) requestByPaymentRef(ctx context.Context, paymentRef string) (models.Request, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM request WHERE payment_ref = $1`, paymentRef)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return models.Request{}, ErrRequestNotFound
	}
	if err != nil {
		return models.Request{}, fmt.Errorf("failed to query request by payment: %w", err)
	}
	return req, nil
}

// ListRequests returns every request of the event, oldest first.
func (s *Store) ListRequests(ctx context.Context) ([]models.Request, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+requestColumns+` FROM request ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	requests := []models.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// SetCompleted flips the soft completion flag of a request.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) error {
	var completedAt *time.Time
	if completed {
		now := s.now()
		completedAt = &now
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE request SET is_completed = $1, completed_at = $2 WHERE id = $3
	`, completed, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update request %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRequestNotFound
	}

	slog.Info("request completion changed", "request_id", id, "completed", completed)
	s.notify(models.TopicQueue)
	return nil
}

// NowPlaying returns the oldest request that is not completed.
func (s *Store) NowPlaying(ctx context.Context) (models.Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+`
		FROM request
		WHERE is_completed = $1
		ORDER BY created_at, id
		LIMIT 1
	`, false)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return models.Request{}, ErrQueueEmpty
	}
	if err != nil {
		return models.Request{}, fmt.Errorf("failed to query now playing: %w", err)
	}
	return req, nil
}

// LatestCompleted returns the most recently completed request.
func (s *Store) LatestCompleted(ctx context.Context) (models.Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+`
		FROM request
		WHERE is_completed = $1
		ORDER BY COALESCE(completed_at, created_at) DESC, created_at DESC
		LIMIT 1
	`, true)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return models.Request{}, ErrNoCompleted
	}
	if err != nil {
		return models.Request{}, fmt.Errorf("failed to query completed request: %w", err)
	}
	return req, nil
}

// DeleteRequest permanently removes a request.
func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM request WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete request %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRequestNotFound
	}

	slog.Info("request removed", "request_id", id)
	s.notify(models.TopicQueue)
	return nil
}

// Credits returns the current value of the shared credit pool.
func (s *Store) Credits(ctx context.Context) (int64, error) {
	var credits int64
	err := s.db.QueryRowContext(ctx, `SELECT credits FROM credit_pool WHERE id = 1`).Scan(&credits)
	if err != nil {
		return 0, fmt.Errorf("failed to query credits: %w", err)
	}
	return credits, nil
}

// SetCredits overwrites the credit pool. Negative values are stored as 0.
// The write is unconditional: callers doing read-modify-write get
// last-writer-wins semantics.
func (s *Store) SetCredits(ctx context.Context, count int64) (int64, error) {
	if count < 0 {
		count = 0
	}
	_, err := s.db.ExecContext(ctx, `UPDATE credit_pool SET credits = $1 WHERE id = 1`, count)
	if err != nil {
		return 0, fmt.Errorf("failed to set credits: %w", err)
	}

	creditsGauge.Set(float64(count))
	slog.Info("credits set", "credits", count)
	s.notify(models.TopicCredits)
	return count, nil
}

// AddCredits applies delta in a single statement, flooring at 0 and
// saturating at math.MaxInt64.
func (s *Store) AddCredits(ctx context.Context, delta int64) (int64, error) {
	// credits is never negative, so max - credits cannot overflow; the
	// later branches only run when credits + delta fits
	_, err := s.db.ExecContext(ctx, `
		UPDATE credit_pool
		SET credits = CASE
			WHEN CAST($1 AS BIGINT) > CAST($2 AS BIGINT) - credits THEN CAST($2 AS BIGINT)
			WHEN credits + CAST($1 AS BIGINT) < 0 THEN 0
			ELSE credits + CAST($1 AS BIGINT)
		END
		WHERE id = 1
	`, delta, int64(math.MaxInt64))
	if err != nil {
		return 0, fmt.Errorf("failed to add credits: %w", err)
	}

	credits, err := s.Credits(ctx)
	if err != nil {
		return 0, err
	}

	creditsGauge.Set(float64(credits))
	slog.Info("credits adjusted", "delta", delta, "credits", credits)
	s.notify(models.TopicCredits)
	return credits, nil
}

// Snapshot returns the current state of a realtime topic.
func (s *Store) Snapshot(ctx context.Context, topic string) (models.Snapshot, error) {
	switch topic {
	case models.TopicQueue:
		requests, err := s.ListRequests(ctx)
		if err != nil {
			return models.Snapshot{}, err
		}
		return models.Snapshot{Topic: topic, Requests: requests}, nil
	case models.TopicCredits:
		credits, err := s.Credits(ctx)
		if err != nil {
			return models.Snapshot{}, err
		}
		return models.Snapshot{Topic: topic, Credits: credits}, nil
	}
	return models.Snapshot{}, ErrUnknownTopic
}
