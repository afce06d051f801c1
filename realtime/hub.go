// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielhkuo/jukebox-party/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

var subscribers = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "jukebox_realtime_subscribers",
	Help: "Open websocket subscriptions per topic",
}, []string{"topic"})

// Snapshotter loads the current state of a topic.
type Snapshotter interface {
	Snapshot(ctx context.Context, topic string) (models.Snapshot, error)
}

type message struct {
	topic   string
	payload []byte
}

// Hub fans out topic snapshots to websocket subscribers. Each subscriber
// gets the latest snapshot on connect and a fresh one after every change.
type Hub struct {
	source Snapshotter

	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan message

	// serializes load+publish so snapshots are published in load order
	notifyMu sync.Mutex

	clients map[*subscriber]bool
	latest  map[string][]byte
}

func NewHub(source Snapshotter) *Hub {
	return &Hub{
		source:     source,
		register:   make(chan *subscriber, 32),
		unregister: make(chan *subscriber, 32),
		broadcast:  make(chan message, 128),
		clients:    make(map[*subscriber]bool),
		latest:     make(map[string][]byte),
	}
}

// Run owns the subscriber set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			subscribers.WithLabelValues(c.topic).Inc()
			if msg, ok := h.latest[c.topic]; ok {
				c.send <- msg
			}
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
			}
		case m := <-h.broadcast:
			h.latest[m.topic] = m.payload
			for c := range h.clients {
				if c.topic != m.topic {
					continue
				}
				select {
				case c.send <- m.payload:
				default:
					slog.Warn("dropping slow subscriber", "topic", c.topic)
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *subscriber) {
	delete(h.clients, c)
	close(c.send)
	subscribers.WithLabelValues(c.topic).Dec()
}

// Notify reloads the topic snapshot and pushes it to subscribers.
func (h *Hub) Notify(topic string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.publish(ctx, topic); err != nil {
		slog.Error("failed to publish snapshot", "topic", topic, "error", err)
	}
}

// Prime loads every topic once so the first subscriber has something to
// receive before any change happens.
func (h *Hub) Prime(ctx context.Context) error {
	for _, topic := range []string{models.TopicQueue, models.TopicCredits} {
		if err := h.publish(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) publish(ctx context.Context, topic string) error {
	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()

	snap, err := h.source.Snapshot(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to load %s snapshot: %w", topic, err)
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot: %w", topic, err)
	}

	select {
	case h.broadcast <- message{topic: topic, payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Terminals are served from other origins (projector, kiosk tablets)
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the connection and subscribes it to topic.
func (h *Hub) ServeWS(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "topic", topic, "error", err)
			return
		}

		c := &subscriber{hub: h, conn: conn, topic: topic, send: make(chan []byte, sendBuffer)}
		h.register <- c
		slog.Info("subscriber connected", "topic", topic, "remote", r.RemoteAddr)

		go c.writePump()
		c.readPump()
	}
}

type subscriber struct {
	hub   *Hub
	conn  *websocket.Conn
	topic string
	send  chan []byte
}

// readPump only services control frames; subscribers never write data.
func (c *subscriber) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
