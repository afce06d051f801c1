// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command seeder imports a repertoire CSV into the song catalog. Rows are
// upserted by slug id, so re-running it updates songs in place.
//
//	go run ./cmd/seeder -d jukebox.db -csv data/repertoire.csv
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/danielhkuo/jukebox-party/cliparse"
	"github.com/danielhkuo/jukebox-party/db"
	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/store"
)

func main() {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	cfg, err := cliparse.ParseSeederFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}

	file, err := os.Open(cfg.CSVPath)
	if err != nil {
		slog.Error("Failed to open CSV", "path", cfg.CSVPath, "error", err)
		os.Exit(1)
	}
	defer file.Close()

	songs, err := readRepertoire(file)
	if err != nil {
		slog.Error("Failed to parse CSV", "error", err)
		os.Exit(1)
	}

	slog.Info("Syncing library", "rows", len(songs))
	n := seed(context.Background(), store.New(dbConn), songs)
	slog.Info("Library synchronized", "songs", n)
}

// seed upserts every song and returns how many were written. Failures are
// logged and skipped.
func seed(ctx context.Context, st *store.Store, songs []models.Song) int {
	count := 0
	for _, song := range songs {
		if err := st.UpsertSong(ctx, song); err != nil {
			slog.Error("Failed to sync song", "id", song.ID, "title", song.Title, "error", err)
			continue
		}
		count++
		if count%100 == 0 {
			slog.Info("Synced", "count", count)
		}
	}
	return count
}
