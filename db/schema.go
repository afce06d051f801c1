// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the database of the given type and verifies the
// connection. dbType is "postgres" or "sqlite".
func Open(dbType, url string) (*sql.DB, error) {
	driver, err := driverName(dbType)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	// SQLite serializes writers; one connection also keeps :memory: databases
	// alive across queries
	if driver == "sqlite" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}
	return conn, nil
}

func driverName(dbType string) (string, error) {
	switch dbType {
	case "postgres":
		return "postgres", nil
	case "sqlite":
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database type %q", dbType)
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Seed the credit pool row
	_, err = db.Exec(`
		INSERT INTO credit_pool (id, credits)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to seed credit pool: %w", err)
	}

	return nil
}

// The statements stay within the SQL dialect shared by PostgreSQL and SQLite.
const schema = `
-- Catalog
CREATE TABLE IF NOT EXISTS song (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    artist TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    album_art_url TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_song_category ON song(category);

-- Queue
CREATE TABLE IF NOT EXISTS request (
    id TEXT PRIMARY KEY,
    song_id TEXT NOT NULL,
    title TEXT NOT NULL,
    artist TEXT NOT NULL,
    album_art_url TEXT NOT NULL DEFAULT '',
    requested_by TEXT NOT NULL DEFAULT '',
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    source TEXT NOT NULL,
    payment_ref TEXT
);

CREATE INDEX IF NOT EXISTS idx_request_created_at ON request(created_at);
CREATE INDEX IF NOT EXISTS idx_request_completed ON request(is_completed);
-- A checkout session queues at most one request (NULLs are distinct)
CREATE UNIQUE INDEX IF NOT EXISTS idx_request_payment_ref ON request(payment_ref);

-- Credit pool (single row, id = 1)
CREATE TABLE IF NOT EXISTS credit_pool (
    id INTEGER PRIMARY KEY,
    credits BIGINT NOT NULL DEFAULT 0 CHECK (credits >= 0)
);
`
