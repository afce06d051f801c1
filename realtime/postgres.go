// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// Channel is the Postgres NOTIFY channel carrying changed topic names.
const Channel = "jukebox_changes"

// PGNotifier announces changes through Postgres so every server instance
// sharing the database refreshes its subscribers.
type PGNotifier struct {
	db *sql.DB
}

func NewPGNotifier(db *sql.DB) *PGNotifier {
	return &PGNotifier{db: db}
}

func (n *PGNotifier) Notify(topic string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := n.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, Channel, topic); err != nil {
		slog.Error("failed to send change notification", "topic", topic, "error", err)
	}
}

// Notifier is the receiving side of a change announcement.
type Notifier interface {
	Notify(topic string)
}

// Listener relays LISTEN notifications on Channel to a Notifier.
type Listener struct {
	connString string
	target     Notifier
	retryDelay time.Duration
}

func NewListener(connString string, target Notifier) *Listener {
	return &Listener{connString: connString, target: target, retryDelay: 2 * time.Second}
}

// Run listens until ctx is cancelled, reconnecting after failures.
func (l *Listener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("change listener disconnected", "error", err, "retry_in", l.retryDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", Channel, err)
	}
	slog.Info("change listener ready", "channel", Channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.target.Notify(n.Payload)
	}
}
