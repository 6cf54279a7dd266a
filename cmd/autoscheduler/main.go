/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/citizenfm/autoscheduler/internal/config"
	"github.com/citizenfm/autoscheduler/internal/library"
	"github.com/citizenfm/autoscheduler/internal/logging"
	"github.com/citizenfm/autoscheduler/internal/store/mirror"
	"github.com/citizenfm/autoscheduler/internal/store/remote"
	"github.com/citizenfm/autoscheduler/internal/telemetry"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "autoscheduler",
	Short: "CitizenFM automated schedule generation",
	Long:  "Generates daily music schedules from hourly templates and synchronizes them into the station playout database and its local mirror.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

func openMirror() (*mirror.Store, error) {
	store, err := mirror.Open(cfg.MirrorPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open mirror %s: %w", cfg.MirrorPath, err)
	}
	return store, nil
}

func openRemote() (*remote.Store, error) {
	store, err := remote.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open playout database: %w", err)
	}
	return store, nil
}

func loadLibrary() (*library.Library, error) {
	lib, err := library.LoadCSV(cfg.TracksCSV)
	if err != nil {
		return nil, fmt.Errorf("load track library %s: %w", cfg.TracksCSV, err)
	}
	logger.Info().Int("tracks", lib.Len()).Str("path", cfg.TracksCSV).Msg("track library loaded")
	return lib, nil
}

// serveMetrics exposes /metrics for the duration of a long-running
// command. Best effort: a bind failure is logged, not fatal.
func serveMetrics() {
	if cfg.MetricsBind == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	go func() {
		if err := http.ListenAndServe(cfg.MetricsBind, mux); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.MetricsBind).Msg("metrics listener failed")
		}
	}()
}
