// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/danielhkuo/jukebox-party/models"
)

// AllCategories is the pseudo-category that disables category filtering.
const AllCategories = "All"

// Fetcher returns the whole catalog in one call.
type Fetcher interface {
	Library(ctx context.Context) ([]models.Song, error)
}

// View holds the catalog and the current category/search filter.
type View struct {
	mu         sync.RWMutex
	songs      []models.Song
	categories []string
	category   string
	search     string
}

func NewView() *View {
	return &View{categories: []string{AllCategories}, category: AllCategories}
}

// Load fetches the catalog once. A failed load leaves the view unchanged.
func (v *View) Load(ctx context.Context, f Fetcher) error {
	songs, err := f.Library(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	v.SetSongs(songs)
	return nil
}

// SetSongs replaces the catalog and rebuilds the category list.
func (v *View) SetSongs(songs []models.Song) {
	categories := []string{AllCategories}
	seen := map[string]bool{}
	for _, s := range songs {
		if s.Category == "" || seen[s.Category] {
			continue
		}
		seen[s.Category] = true
		categories = append(categories, s.Category)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.songs = songs
	v.categories = categories
}

// Categories returns "All" followed by the distinct categories in
// first-seen order.
func (v *View) Categories() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.categories...)
}

func (v *View) SetCategory(category string) {
	if category == "" {
		category = AllCategories
	}
	v.mu.Lock()
	v.category = category
	v.mu.Unlock()
}

func (v *View) SetSearch(search string) {
	v.mu.Lock()
	v.search = search
	v.mu.Unlock()
}

func (v *View) Category() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.category
}

// Visible returns the songs passing both filters, in catalog order.
func (v *View) Visible() []models.Song {
	v.mu.RLock()
	defer v.mu.RUnlock()

	query := strings.ToLower(v.search)
	visible := []models.Song{}
	for _, s := range v.songs {
		if v.category != AllCategories && s.Category != v.category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(s.Title), query) &&
			!strings.Contains(strings.ToLower(s.Artist), query) {
			continue
		}
		visible = append(visible, s)
	}
	return visible
}

// Find returns the song with the given id.
func (v *View) Find(id string) (models.Song, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, s := range v.songs {
		if s.ID == id {
			return s, true
		}
	}
	return models.Song{}, false
}
