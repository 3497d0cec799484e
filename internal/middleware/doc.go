// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

/*
Package middleware provides HTTP middleware shared by both listeners:
request ID propagation, Prometheus instrumentation, and gzip compression.

The pieces compose with chi's r.Use():

	r.Use(middleware.RequestID)
	r.Use(middleware.Prometheus)
	r.Use(middleware.Compression)

Rate limiting and CORS live in the api package since they are configured
per route group; everything here applies uniformly.
*/
package middleware
