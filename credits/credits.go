// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package credits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
)

var ErrNoCredits = errors.New("no credits remaining")

// Writer stores an absolute credit count.
type Writer interface {
	WriteCredits(ctx context.Context, count int64) error
}

// Ledger is one terminal's view of the shared credit pool. Every write is
// computed from the last observed value and stored as an absolute count,
// so two terminals acting on the same observation both succeed and the
// later write wins.
type Ledger struct {
	mu      sync.Mutex
	current int64
	w       Writer
}

func NewLedger(w Writer) *Ledger {
	return &Ledger{w: w}
}

// Observe records a value pushed by the credits feed.
func (l *Ledger) Observe(count int64) {
	l.mu.Lock()
	l.current = max(count, 0)
	l.mu.Unlock()
}

func (l *Ledger) Current() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Adjust writes current+delta, saturating at zero and at MaxInt64.
func (l *Ledger) Adjust(ctx context.Context, delta int64) (int64, error) {
	l.mu.Lock()
	next := addSaturating(l.current, delta)
	l.mu.Unlock()

	if err := l.write(ctx, next); err != nil {
		return 0, err
	}
	return next, nil
}

// TrySpend takes one credit. It fails with ErrNoCredits when the last
// observed value is zero and writes nothing.
func (l *Ledger) TrySpend(ctx context.Context) error {
	l.mu.Lock()
	cur := l.current
	l.mu.Unlock()

	if cur <= 0 {
		return ErrNoCredits
	}
	return l.write(ctx, cur-1)
}

func (l *Ledger) write(ctx context.Context, count int64) error {
	if err := l.w.WriteCredits(ctx, count); err != nil {
		return fmt.Errorf("failed to write credits: %w", err)
	}
	l.Observe(count)
	slog.Debug("Credits written", "count", count)
	return nil
}

func addSaturating(cur, delta int64) int64 {
	if delta > 0 && cur > math.MaxInt64-delta {
		return math.MaxInt64
	}
	return max(cur+delta, 0)
}
