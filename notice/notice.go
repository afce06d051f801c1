// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notice

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notice stays up unless replaced.
const DefaultTTL = 5 * time.Second

type Kind int

const (
	Success Kind = iota
	Error
)

func (k Kind) String() string {
	if k == Error {
		return "error"
	}
	return "success"
}

type Notice struct {
	Kind Kind
	Text string
}

// Board shows at most one notice at a time.
type Board struct {
	mu       sync.Mutex
	current  *Notice
	seq      uint64
	stop     func() bool
	ttl      time.Duration
	after    func(time.Duration, func()) func() bool
	onChange func(*Notice)
}

func NewBoard(ttl time.Duration) *Board {
	return &Board{
		ttl: ttl,
		after: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
}

// OnChange registers a callback run whenever the notice changes. It
// receives nil when the board clears.
func (b *Board) OnChange(fn func(*Notice)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Show replaces the current notice and restarts the dismiss timer.
func (b *Board) Show(kind Kind, text string) {
	n := &Notice{Kind: kind, Text: text}

	b.mu.Lock()
	if b.stop != nil {
		b.stop()
	}
	b.seq++
	seq := b.seq
	b.current = n
	b.stop = b.after(b.ttl, func() { b.expire(seq) })
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(n)
	}
}

// Current returns the notice on display, if any.
func (b *Board) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notice{}, false
	}
	return *b.current, true
}

// Dismiss clears the board early.
func (b *Board) Dismiss() {
	b.mu.Lock()
	if b.stop != nil {
		b.stop()
	}
	b.seq++
	b.clear()
}

// expire only clears the notice its timer was started for.
func (b *Board) expire(seq uint64) {
	b.mu.Lock()
	if seq != b.seq {
		b.mu.Unlock()
		return
	}
	b.clear()
}

// clear is called with b.mu held and releases it.
func (b *Board) clear() {
	had := b.current != nil
	b.current = nil
	b.stop = nil
	fn := b.onChange
	b.mu.Unlock()

	if had && fn != nil {
		fn(nil)
	}
}
