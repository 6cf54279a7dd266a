/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTOSCHED_REMOTE_DSN", "host=localhost dbname=citizenfm")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("environment = %q, want development", cfg.Environment)
	}
	if cfg.RemoteBackend != RemotePostgres {
		t.Errorf("remote backend = %q, want postgres", cfg.RemoteBackend)
	}
	if cfg.MirrorPath != "autoscheduler.db" {
		t.Errorf("mirror path = %q", cfg.MirrorPath)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("AUTOSCHED_REMOTE_DSN", "dsn")
	t.Setenv("AUTOSCHED_REMOTE_BACKEND", "mssql")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("AUTOSCHED_REMOTE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DSN")
	}
}
