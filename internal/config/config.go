/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// RemoteBackend selects the playout database driver.
type RemoteBackend string

const (
	RemotePostgres RemoteBackend = "postgres"
	RemoteMySQL    RemoteBackend = "mysql"
)

// Config covers process level configuration read from environment
// variables. It is passed explicitly into store constructors; there is no
// process-wide singleton.
type Config struct {
	Environment string

	// Remote playout store (the authoritative schedule database).
	RemoteBackend RemoteBackend
	RemoteDSN     string

	// Local mirror store (sqlite file path).
	MirrorPath string

	// Media library CSV export path.
	TracksCSV string

	MetricsBind string
}

// Load reads an optional .env file and the environment, applies defaults,
// and validates the result.
func Load() (*Config, error) {
	// Missing .env is not an error; the environment still wins.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:   getEnvAny([]string{"AUTOSCHED_ENV"}, "development"),
		RemoteBackend: RemoteBackend(getEnvAny([]string{"AUTOSCHED_REMOTE_BACKEND"}, string(RemotePostgres))),
		RemoteDSN:     getEnvAny([]string{"AUTOSCHED_REMOTE_DSN"}, ""),
		MirrorPath:    getEnvAny([]string{"AUTOSCHED_MIRROR_PATH"}, "autoscheduler.db"),
		TracksCSV:     getEnvAny([]string{"AUTOSCHED_TRACKS_CSV"}, "data/tracks.csv"),
		MetricsBind:   getEnvAny([]string{"AUTOSCHED_METRICS_BIND"}, "127.0.0.1:9000"),
	}

	if cfg.RemoteBackend != RemotePostgres && cfg.RemoteBackend != RemoteMySQL {
		return nil, fmt.Errorf("unsupported remote backend %q", cfg.RemoteBackend)
	}

	if cfg.RemoteDSN == "" {
		return nil, fmt.Errorf("AUTOSCHED_REMOTE_DSN must be provided")
	}

	return cfg, nil
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}
