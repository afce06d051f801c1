// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package queue

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"
	"time"

	"github.com/danielhkuo/jukebox-party/models"
)

var base = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

func at(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

func active(id string, min int) models.Request {
	return models.Request{ID: id, Title: "Song " + id, Timestamp: at(min)}
}

func done(id string, requested int, completed *int) models.Request {
	r := models.Request{ID: id, Title: "Song " + id, Timestamp: at(requested), IsCompleted: true}
	if completed != nil {
		c := at(*completed)
		r.CompletedAt = &c
	}
	return r
}

func intp(i int) *int { return &i }

func requestIDs(rs []models.Request) []string {
	out := []string{}
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestProject(t *testing.T) {
	tests := []struct {
		name          string
		requests      []models.Request
		wantActive    []string
		wantCompleted []string
	}{
		{
			name:          "empty",
			wantActive:    []string{},
			wantCompleted: []string{},
		},
		{
			name:          "active oldest first",
			requests:      []models.Request{active("c", 3), active("a", 1), active("b", 2)},
			wantActive:    []string{"a", "b", "c"},
			wantCompleted: []string{},
		},
		{
			name:          "equal times break on id",
			requests:      []models.Request{active("y", 1), active("x", 1)},
			wantActive:    []string{"x", "y"},
			wantCompleted: []string{},
		},
		{
			name: "completed newest first capped at three",
			requests: []models.Request{
				done("a", 0, intp(10)),
				done("b", 1, intp(40)),
				done("c", 2, intp(20)),
				done("d", 3, intp(30)),
			},
			wantActive:    []string{},
			wantCompleted: []string{"b", "d", "c"},
		},
		{
			name: "missing completion time falls back to request time",
			requests: []models.Request{
				done("old", 50, nil),
				done("new", 0, intp(60)),
				done("mid", 0, intp(45)),
			},
			wantActive:    []string{},
			wantCompleted: []string{"new", "old", "mid"},
		},
		{
			name: "mixed",
			requests: []models.Request{
				active("q2", 5),
				done("d1", 0, intp(4)),
				active("q1", 2),
			},
			wantActive:    []string{"q1", "q2"},
			wantCompleted: []string{"d1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project(tt.requests)
			if got := requestIDs(p.Active); !reflect.DeepEqual(got, tt.wantActive) {
				t.Errorf("Active = %v, want %v", got, tt.wantActive)
			}
			if got := requestIDs(p.Completed); !reflect.DeepEqual(got, tt.wantCompleted) {
				t.Errorf("Completed = %v, want %v", got, tt.wantCompleted)
			}
		})
	}
}

func TestNowPlayingAndUpNext(t *testing.T) {
	p := Project([]models.Request{active("b", 2), active("a", 1), active("c", 3)})

	now, ok := p.NowPlaying()
	if !ok || now.ID != "a" {
		t.Errorf("NowPlaying() = %v, %v, want a", now.ID, ok)
	}
	if got := requestIDs(p.UpNext()); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("UpNext() = %v", got)
	}

	empty := Project(nil)
	if _, ok := empty.NowPlaying(); ok {
		t.Error("Empty queue should have nothing playing")
	}
	if len(empty.UpNext()) != 0 {
		t.Error("Empty queue should have nothing up next")
	}
}

func before(a, b models.Request) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}

func TestProjectRandomSets(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 200; round++ {
		n := rng.IntN(12)
		requests := make([]models.Request, 0, n)
		pending := 0
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("r%02d", i)
			// few distinct minutes so equal timestamps are common
			if rng.IntN(3) == 0 {
				requests = append(requests, done(id, rng.IntN(5), intp(rng.IntN(30))))
				continue
			}
			requests = append(requests, active(id, rng.IntN(5)))
			pending++
		}
		rng.Shuffle(len(requests), func(i, j int) { requests[i], requests[j] = requests[j], requests[i] })

		p := Project(requests)

		if len(p.Active) != pending {
			t.Fatalf("round %d: Active has %d requests, want %d", round, len(p.Active), pending)
		}
		if len(p.Completed) > CompletedLimit || len(p.Completed) > n-pending {
			t.Fatalf("round %d: Completed has %d requests", round, len(p.Completed))
		}
		for _, r := range p.Completed {
			if !r.IsCompleted {
				t.Fatalf("round %d: %s in Completed is not completed", round, r.ID)
			}
		}

		now, ok := p.NowPlaying()
		if ok != (pending > 0) {
			t.Fatalf("round %d: NowPlaying ok = %v with %d pending", round, ok, pending)
		}
		if !ok {
			continue
		}
		for _, r := range requests {
			if !r.IsCompleted && before(r, now) {
				t.Fatalf("round %d: %s is older than now playing %s", round, r.ID, now.ID)
			}
		}
		next := p.UpNext()
		if len(next) != pending-1 {
			t.Fatalf("round %d: UpNext has %d requests, want %d", round, len(next), pending-1)
		}
		prev := now
		for _, r := range next {
			if r.IsCompleted || !before(prev, r) {
				t.Fatalf("round %d: UpNext out of order at %s", round, r.ID)
			}
			prev = r
		}
	}
}

type call struct {
	op        string
	id        string
	completed bool
}

type fakeCommands struct {
	calls []call
	err   error
}

func (f *fakeCommands) SetCompleted(ctx context.Context, id string, completed bool) error {
	f.calls = append(f.calls, call{"set", id, completed})
	return f.err
}

func (f *fakeCommands) Delete(ctx context.Context, id string) error {
	f.calls = append(f.calls, call{"delete", id, false})
	return f.err
}

func TestOperatorAdvanceAndPrevious(t *testing.T) {
	view := NewView()
	view.Apply([]models.Request{active("a", 1), active("b", 2), done("z", 0, intp(0))})
	cmds := &fakeCommands{}
	op := NewOperator(cmds, view)
	ctx := context.Background()

	got, err := op.Advance(ctx)
	if err != nil || got.ID != "a" {
		t.Fatalf("Advance() = %v, %v", got.ID, err)
	}
	got, err = op.Previous(ctx)
	if err != nil || got.ID != "z" {
		t.Fatalf("Previous() = %v, %v", got.ID, err)
	}

	want := []call{{"set", "a", true}, {"set", "z", false}}
	if !reflect.DeepEqual(cmds.calls, want) {
		t.Errorf("calls = %v, want %v", cmds.calls, want)
	}
}

func TestOperatorEmptyQueue(t *testing.T) {
	op := NewOperator(&fakeCommands{}, NewView())

	if _, err := op.Advance(context.Background()); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("Advance() error = %v, want ErrNothingPlaying", err)
	}
	if _, err := op.Previous(context.Background()); !errors.Is(err, ErrNothingCompleted) {
		t.Errorf("Previous() error = %v, want ErrNothingCompleted", err)
	}
}

func TestOperatorCommandFailure(t *testing.T) {
	view := NewView()
	view.Apply([]models.Request{active("a", 1)})
	op := NewOperator(&fakeCommands{err: errors.New("offline")}, view)

	if err := op.Complete(context.Background(), "a"); err == nil {
		t.Error("Expected error when command fails")
	}
}

func TestOperatorRemove(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		confirm     func(models.Request) bool
		wantRemoved bool
		wantErr     error
		wantCalls   int
	}{
		{"confirmed", "a", func(models.Request) bool { return true }, true, nil, 1},
		{"declined", "a", func(models.Request) bool { return false }, false, nil, 0},
		{"no confirmation", "a", nil, false, nil, 0},
		{"unknown", "nope", func(models.Request) bool { return true }, false, ErrUnknownRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewView()
			view.Apply([]models.Request{active("a", 1)})
			cmds := &fakeCommands{}
			op := NewOperator(cmds, view)

			removed, err := op.Remove(context.Background(), tt.id, tt.confirm)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Remove() error = %v, want %v", err, tt.wantErr)
			}
			if removed != tt.wantRemoved {
				t.Errorf("Remove() = %v, want %v", removed, tt.wantRemoved)
			}
			if len(cmds.calls) != tt.wantCalls {
				t.Errorf("commands sent = %d, want %d", len(cmds.calls), tt.wantCalls)
			}
		})
	}
}

func TestViewOnChange(t *testing.T) {
	view := NewView()
	var seen []Projection
	view.OnChange(func(p Projection) { seen = append(seen, p) })

	view.Apply([]models.Request{active("a", 1)})
	view.Apply(nil)

	if len(seen) != 2 {
		t.Fatalf("OnChange called %d times, want 2", len(seen))
	}
	if _, ok := seen[1].NowPlaying(); ok {
		t.Error("Second projection should be empty")
	}
	if _, ok := view.Find("a"); ok {
		t.Error("Find should use the latest projection")
	}
}
