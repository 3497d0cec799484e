// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/yamba/config.yaml",
	"/etc/yamba/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "YAMBA_CONFIG"

// envPrefix is stripped from environment variables before mapping them to
// koanf paths: YAMBA_SERVER_PORT -> server.port.
const envPrefix = "YAMBA_"

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              1340,
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Callback: CallbackConfig{
			// The backend reaches the callback listener on the internal
			// network only; this port is never exposed publicly.
			Host: "0.0.0.0",
			Port: 82,
		},
		Database: DatabaseConfig{
			Path:      "/data/yamba.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Backend: BackendConfig{
			URL:               "http://backend:1338",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 10,
			Burst:             5,
			BreakerFailures:   5,
			BreakerTimeout:    30 * time.Second,
		},
		Jobs: JobsConfig{
			SweepEnabled:  true,
			SweepInterval: time.Minute,
			MaxAge:        30 * time.Minute,
		},
		Ledger: LedgerConfig{
			Path: "/data/ledger",
			TTL:  24 * time.Hour,
		},
		Events: EventsConfig{
			BufferSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration in layers: defaults, then an optional YAML file,
// then YAMBA_-prefixed environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return cfg, nil
}

// envTransform maps an environment variable name to a koanf path. The first
// underscore after the prefix separates the section from the key:
// YAMBA_JOBS_SWEEP_INTERVAL -> jobs.sweep_interval.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
