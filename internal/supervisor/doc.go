// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

/*
Package supervisor provides process supervision for Yamba using suture v4.

All long-running components run under a hierarchical supervisor tree with
Erlang/OTP-style restart semantics: crashed services restart automatically
with exponential backoff, and failures in one layer do not take down the
others.

The tree has three layers:

	RootSupervisor ("yamba")
	├── DataSupervisor ("data-layer")
	│   └── JobSweeperService (if sweep enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   └── EventBridgeService
	└── APISupervisor ("api-layer")
	    ├── public HTTP listener
	    └── callback HTTP listener

The split matters during partial failure: a crash in the event bridge
restarts the messaging layer without dropping either HTTP listener, and a
wedged sweeper never touches the websocket hub.

Services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning an error triggers a restart; returning nil after context
cancellation is a clean stop. Supervision events are logged through the
sutureslog adapter so they land in the same structured log stream as the
rest of the application.

DuckDB and Badger are not supervised. Both are embedded libraries whose
handles are owned by their packages; a crash there is a process-level
problem, not something a restart loop can repair.

Typical wiring in main:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("supervisor init failed")
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(bridge)
	tree.AddAPIService(services.NewHTTPServerService("public-api", publicServer, cfg.Server.ShutdownTimeout))
	tree.AddAPIService(services.NewHTTPServerService("callback-api", callbackServer, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
