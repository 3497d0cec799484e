// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

// Package main is the entry point for the Yamba manager.
//
// Yamba manages user playlists whose titles are resolved asynchronously by
// an external worker. Submitting a playlist with a source URL hands the
// resolution to the worker; the worker later reports the outcome on a
// separate callback port, and every change is fanned out to browsers over
// websockets.
//
// The server initializes components in this order:
//
//  1. Configuration: Koanf v2, environment variables over config file over
//     defaults
//  2. Database: DuckDB entity store (playlists, titles, queues, pending jobs)
//  3. Token ledger: Badger store of consumed callback tokens
//  4. Event bus: in-process Watermill pub/sub
//  5. Websocket hub and the bus-to-hub bridge
//  6. Worker client: rate-limited, circuit-broken HTTP client
//  7. HTTP listeners: public API plus the internal callback listener
//
// Everything long-running goes under a suture supervisor tree; see
// internal/supervisor.
//
// # Two listeners
//
// The public listener (SERVER_PORT, default 8080) serves the music API,
// /ws, /metrics, and /health. The callback listener (CALLBACK_PORT,
// default 8081) accepts only the worker's terminal reports. Callback paths
// reached over the public port answer 403; the port split is the callback
// authorization model, so the callback port must never be exposed beyond
// the network segment the worker lives on.
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: both listeners stop
// accepting connections, in-flight requests get the configured shutdown
// timeout, then the bus, ledger, and database close in that order.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/yamba/manager/internal/api"
	"github.com/yamba/manager/internal/backend"
	"github.com/yamba/manager/internal/config"
	"github.com/yamba/manager/internal/database"
	"github.com/yamba/manager/internal/events"
	"github.com/yamba/manager/internal/ledger"
	"github.com/yamba/manager/internal/library"
	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/supervisor"
	"github.com/yamba/manager/internal/supervisor/services"
	ws "github.com/yamba/manager/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("backend_url", cfg.Backend.URL).
		Int("public_port", cfg.Server.Port).
		Int("callback_port", cfg.Callback.Port).
		Msg("Configuration loaded")

	// Entity store.
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	// Consumed-token ledger. An empty path runs it in memory, which
	// drops stale-callback detection across restarts.
	var tokens *ledger.Ledger
	if cfg.Ledger.Path != "" {
		tokens, err = ledger.Open(cfg.Ledger.Path, cfg.Ledger.TTL)
	} else {
		logging.Warn().Msg("Token ledger running in memory; retired tokens are lost on restart")
		tokens, err = ledger.OpenInMemory(cfg.Ledger.TTL)
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open token ledger")
	}
	defer func() {
		if err := tokens.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing token ledger")
		}
	}()

	// In-process event bus feeding the websocket fan-out.
	bus := events.New(events.Config{BufferSize: cfg.Events.BufferSize}, events.NewLoggerAdapter(logging.Logger()))
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	hub := ws.NewHub()
	bridge := ws.NewBridge(bus, hub)

	// Worker client with client-side rate limiting and a circuit breaker.
	workerClient := backend.NewClient(cfg.Backend)

	service := library.New(db, bus, workerClient, tokens)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Abandoned-job sweeper. The original system let lost callbacks pend
	// forever; sweeping is opt-out via JOBS_SWEEP_ENABLED=false.
	if cfg.Jobs.SweepEnabled {
		tree.AddDataService(library.NewSweeper(service, cfg.Jobs.SweepInterval, cfg.Jobs.MaxAge))
		logging.Info().
			Dur("interval", cfg.Jobs.SweepInterval).
			Dur("max_age", cfg.Jobs.MaxAge).
			Msg("Job sweeper enabled")
	} else {
		logging.Info().Msg("Job sweeper disabled; abandoned jobs pend until a callback arrives")
	}

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(bridge)

	handler := api.NewHandler(service, hub, db.Ping, cfg.Server.CORSOrigins)
	router := api.NewRouter(handler, cfg.Server)

	publicServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Public(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	callbackServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Callback.Host, cfg.Callback.Port),
		Handler:      router.Callback(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	tree.AddAPIService(services.NewHTTPServerService("public-api", publicServer, cfg.Server.ShutdownTimeout))
	tree.AddAPIService(services.NewHTTPServerService("callback-api", callbackServer, cfg.Server.ShutdownTimeout))
	logging.Info().
		Str("public_addr", publicServer.Addr).
		Str("callback_addr", callbackServer.Addr).
		Msg("HTTP listeners added to supervisor tree")

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Yamba stopped")
}
