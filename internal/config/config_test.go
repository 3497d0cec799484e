// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package config

import (
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("YAMBA_SERVER_PORT", "9090")
	t.Setenv("YAMBA_BACKEND_URL", "http://worker:9999")
	t.Setenv("YAMBA_JOBS_SWEEP_ENABLED", "false")
	t.Setenv("YAMBA_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Backend.URL != "http://worker:9999" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Jobs.SweepEnabled {
		t.Error("Jobs.SweepEnabled should be overridden to false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"YAMBA_SERVER_PORT", "server.port"},
		{"YAMBA_JOBS_SWEEP_INTERVAL", "jobs.sweep_interval"},
		{"YAMBA_BACKEND_BREAKER_TIMEOUT", "backend.breaker_timeout"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero server port", func(c *Config) { c.Server.Port = 0 }},
		{"callback equals server", func(c *Config) { c.Callback.Port = c.Server.Port }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"empty backend url", func(c *Config) { c.Backend.URL = "" }},
		{"zero backend timeout", func(c *Config) { c.Backend.Timeout = 0 }},
		{"sweep without max age", func(c *Config) { c.Jobs.SweepEnabled = true; c.Jobs.MaxAge = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSweepDefaults(t *testing.T) {
	cfg := defaultConfig()
	if !cfg.Jobs.SweepEnabled {
		t.Error("sweep should be enabled by default")
	}
	if cfg.Jobs.MaxAge < cfg.Jobs.SweepInterval {
		t.Errorf("MaxAge %s should not be shorter than SweepInterval %s",
			cfg.Jobs.MaxAge, cfg.Jobs.SweepInterval)
	}
	if cfg.Ledger.TTL < time.Hour {
		t.Errorf("ledger TTL %s suspiciously short", cfg.Ledger.TTL)
	}
}
