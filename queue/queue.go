// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package queue

import (
	"sort"
	"sync"
	"time"

	"github.com/danielhkuo/jukebox-party/models"
)

// CompletedLimit caps how many finished requests a projection keeps.
const CompletedLimit = 3

// Projection splits the request collection the way the screens show it.
type Projection struct {
	// Active requests, oldest first
	Active []models.Request
	// Most recently completed first, at most CompletedLimit
	Completed []models.Request
}

// NowPlaying is the head of the active list.
func (p Projection) NowPlaying() (models.Request, bool) {
	if len(p.Active) == 0 {
		return models.Request{}, false
	}
	return p.Active[0], true
}

// UpNext is the active list after the head.
func (p Projection) UpNext() []models.Request {
	if len(p.Active) < 2 {
		return []models.Request{}
	}
	return p.Active[1:]
}

// LastCompleted is the most recently finished request.
func (p Projection) LastCompleted() (models.Request, bool) {
	if len(p.Completed) == 0 {
		return models.Request{}, false
	}
	return p.Completed[0], true
}

// Project builds a projection from an unordered request collection.
func Project(requests []models.Request) Projection {
	p := Projection{
		Active:    []models.Request{},
		Completed: []models.Request{},
	}
	for _, r := range requests {
		if r.IsCompleted {
			p.Completed = append(p.Completed, r)
		} else {
			p.Active = append(p.Active, r)
		}
	}

	sort.SliceStable(p.Active, func(i, j int) bool {
		a, b := p.Active[i], p.Active[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})

	sort.SliceStable(p.Completed, func(i, j int) bool {
		a, b := finishedAt(p.Completed[i]), finishedAt(p.Completed[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return p.Completed[i].ID < p.Completed[j].ID
	})
	if len(p.Completed) > CompletedLimit {
		p.Completed = p.Completed[:CompletedLimit]
	}

	return p
}

// finishedAt falls back to the request time for rows completed before
// completion times were recorded.
func finishedAt(r models.Request) time.Time {
	if r.CompletedAt != nil {
		return *r.CompletedAt
	}
	return r.Timestamp
}

// View keeps the latest projection of a live request feed.
type View struct {
	mu       sync.RWMutex
	current  Projection
	onChange func(Projection)
}

func NewView() *View {
	return &View{current: Project(nil)}
}

// OnChange registers a callback run after every Apply.
func (v *View) OnChange(fn func(Projection)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// Apply replaces the projection with one built from a fresh snapshot.
func (v *View) Apply(requests []models.Request) {
	p := Project(requests)

	v.mu.Lock()
	v.current = p
	fn := v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn(p)
	}
}

func (v *View) Current() Projection {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Find looks a request up in the current projection.
func (v *View) Find(id string) (models.Request, bool) {
	p := v.Current()
	for _, r := range p.Active {
		if r.ID == id {
			return r, true
		}
	}
	for _, r := range p.Completed {
		if r.ID == id {
			return r, true
		}
	}
	return models.Request{}, false
}
