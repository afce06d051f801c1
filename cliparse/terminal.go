// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"os"
)

const (
	DefaultServerURL = "http://localhost:3318"
	DefaultDeviceDB  = "jukebox-device.db"
)

// TerminalConfig configures the picker, projector and console programs.
type TerminalConfig struct {
	ServerURL string

	// DeviceDB is the SQLite file holding this terminal's credentials
	DeviceDB string

	// KioskSecret is the secret this deployment expects kiosks to hold.
	// KioskPolicy is "strict" or "presence".
	KioskSecret string
	KioskPolicy string

	// Args are the positional arguments left after the flags
	Args []string
}

// ParseTerminalFlags parses terminal flags; unset flags fall back to
// JUKEBOX_SERVER, DEVICE_DB, KIOSK_SECRET and KIOSK_POLICY.
func ParseTerminalFlags(name string, args []string) (TerminalConfig, error) {
	var cfg TerminalConfig

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "server", "", "Jukebox API base URL")
	fs.StringVar(&cfg.DeviceDB, "device-db", "", "Credential store file for this terminal")
	fs.StringVar(&cfg.KioskSecret, "kiosk-secret", "", "Kiosk secret configured for this deployment (prefer env)")
	fs.StringVar(&cfg.KioskPolicy, "kiosk-policy", "", "Kiosk token check: strict or presence")

	if err := fs.Parse(args); err != nil {
		return TerminalConfig{}, err
	}
	cfg.Args = fs.Args()

	cfg.ServerURL = firstNonEmpty(cfg.ServerURL, os.Getenv("JUKEBOX_SERVER"), DefaultServerURL)
	cfg.DeviceDB = firstNonEmpty(cfg.DeviceDB, os.Getenv("DEVICE_DB"), DefaultDeviceDB)
	cfg.KioskSecret = firstNonEmpty(cfg.KioskSecret, os.Getenv("KIOSK_SECRET"))
	cfg.KioskPolicy = firstNonEmpty(cfg.KioskPolicy, os.Getenv("KIOSK_POLICY"), "strict")

	if cfg.KioskPolicy != "strict" && cfg.KioskPolicy != "presence" {
		return TerminalConfig{}, errors.New("kiosk policy must be strict or presence")
	}
	return cfg, nil
}

// SeederConfig configures the catalog importer.
type SeederConfig struct {
	DatabaseURL  string
	DatabaseType string
	CSVPath      string
}

// ParseSeederFlags reads the database the same way the server does, plus
// the repertoire file to import.
func ParseSeederFlags(args []string) (SeederConfig, error) {
	var cfg SeederConfig

	fs := flag.NewFlagSet("seeder", flag.ContinueOnError)
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.CSVPath, "csv", "data/repertoire.csv", "Repertoire CSV (category, artist, title, art URL)")

	if err := fs.Parse(args); err != nil {
		return SeederConfig{}, err
	}

	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return SeederConfig{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	cfg.DatabaseType = firstNonEmpty(cfg.DatabaseType, os.Getenv("DATABASE_TYPE"), DefaultDatabaseType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return SeederConfig{}, errors.New("database type must be sqlite or postgres")
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
