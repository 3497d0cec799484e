// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

// Package config holds all application configuration, loaded with koanf in
// three layers: built-in defaults, an optional YAML config file, and
// environment variables (highest priority, prefix YAMBA_).
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the engine.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Callback CallbackConfig `koanf:"callback"`
	Database DatabaseConfig `koanf:"database"`
	Backend  BackendConfig  `koanf:"backend"`
	Jobs     JobsConfig     `koanf:"jobs"`
	Ledger   LedgerConfig   `koanf:"ledger"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the public HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Rate limiting for the public API group (callback group is exempt).
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// CallbackConfig holds the internal callback listener settings. The backend
// posts terminal job reports to a separate, non-public port; requests
// arriving on any other port are rejected. This is topology-based
// authorization, not cryptographic.
type CallbackConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// DatabaseConfig holds DuckDB settings for the entity store.
type DatabaseConfig struct {
	// Path is the database file path. ":memory:" runs fully in-memory,
	// which the tests use.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use runtime.NumCPU()
}

// BackendConfig holds the external resolution worker client settings.
type BackendConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`

	// Client-side rate limiting of outbound worker calls.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// Circuit breaker settings; the breaker trips after
	// BreakerFailures consecutive failures and probes again
	// after BreakerTimeout.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// JobsConfig holds the abandoned-job sweeper settings. The original system
// never expired a pending job whose callback was lost; the sweep is a
// deliberate deviation and can be disabled to restore that behaviour.
type JobsConfig struct {
	SweepEnabled  bool          `koanf:"sweep_enabled"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	MaxAge        time.Duration `koanf:"max_age"`
}

// LedgerConfig holds the consumed-token ledger settings.
type LedgerConfig struct {
	// Path is the badger directory. Empty runs the ledger in memory.
	Path string        `koanf:"path"`
	TTL  time.Duration `koanf:"ttl"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	// BufferSize is the per-subscriber channel buffer of the in-process bus.
	BufferSize int `koanf:"buffer_size"`
}

// LoggingConfig holds log level and output format.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks cross-field constraints after loading.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Callback.Port <= 0 || c.Callback.Port > 65535 {
		return fmt.Errorf("callback.port out of range: %d", c.Callback.Port)
	}
	if c.Callback.Port == c.Server.Port {
		return fmt.Errorf("callback.port must differ from server.port (both %d)", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive: %s", c.Backend.Timeout)
	}
	if c.Jobs.SweepEnabled && c.Jobs.MaxAge <= 0 {
		return fmt.Errorf("jobs.max_age must be positive when the sweep is enabled")
	}
	return nil
}
