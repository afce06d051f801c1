// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/danielhkuo/jukebox-party/auth"
	"github.com/danielhkuo/jukebox-party/models"
)

// readRepertoire parses a CSV with a header row and the columns
// category, artist, title, album art URL. Rows missing an artist or
// title are skipped.
func readRepertoire(r io.Reader) ([]models.Song, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var songs []models.Song
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) < 3 {
			slog.Warn("Skipping short row", "line", line, "columns", len(record))
			continue
		}

		song := models.Song{
			Category: strings.TrimSpace(record[0]),
			Artist:   strings.TrimSpace(record[1]),
			Title:    strings.TrimSpace(record[2]),
		}
		if len(record) > 3 {
			song.AlbumArtURL = strings.TrimSpace(record[3])
		}
		if song.Artist == "" || song.Title == "" {
			slog.Warn("Skipping row without artist or title", "line", line)
			continue
		}
		song.ID = auth.Slug(song.Artist, song.Title)
		songs = append(songs, song)
	}
	return songs, nil
}
