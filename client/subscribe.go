// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/jukebox-party/models"
)

// Subscription is a live feed of topic snapshots. Close it when the view
// that opened it goes away.
type Subscription struct {
	conn *websocket.Conn
	done chan struct{}

	// set while fn runs on the reader goroutine
	dispatching atomic.Bool

	closeOnce sync.Once
	closed    bool
	mu        sync.Mutex
	err       error
}

// Subscribe opens the websocket for topic and calls fn with every snapshot,
// starting with the current one. fn runs on the subscription's goroutine
// and may call Close.
// Cancelling ctx closes the subscription.
func (c *Client) Subscribe(ctx context.Context, topic string, fn func(models.Snapshot)) (*Subscription, error) {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws/" + topic

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	s := &Subscription{conn: conn, done: make(chan struct{})}
	go s.read(topic, fn)
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

func (s *Subscription) read(topic string, fn func(models.Snapshot)) {
	defer close(s.done)
	for {
		var snap models.Snapshot
		if err := s.conn.ReadJSON(&snap); err != nil {
			s.mu.Lock()
			if !s.closed {
				s.err = err
				slog.Warn("Subscription ended", "topic", topic, "error", err)
			}
			s.mu.Unlock()
			return
		}
		if snap.Topic != topic {
			continue
		}
		s.dispatching.Store(true)
		fn(snap)
		s.dispatching.Store(false)
	}
}

// Done is closed once the feed stops, by Close or by a dropped connection.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err reports why the feed stopped. It is nil after Close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the feed and waits for the reader to exit. While a callback
// is running it returns without waiting; the reader exits once fn returns.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := s.conn.WriteMessage(websocket.CloseMessage, msg); werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
			slog.Debug("Close frame not sent", "error", werr)
		}
		err = s.conn.Close()
	})
	if !s.dispatching.Load() {
		<-s.done
	}
	return err
}
