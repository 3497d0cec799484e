// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

// Package events carries state-change notifications from the engine to the
// realtime fan-out layer over an in-process Watermill pub/sub.
//
// Publication is best-effort by contract: a failed or unobserved publish
// never changes the outcome of the operation that triggered it. Clients that
// miss an event resynchronize from the authoritative HTTP endpoints.
package events
