// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

// Package models defines the core entities of the reconciliation engine:
// playlists, titles, title-to-playlist associations, pending import jobs,
// instance queues, and the wire shapes of backend callbacks and websocket
// events.
//
// Entities are plain structs with JSON tags; all persistence behaviour lives
// in the database package and all mutation logic in the library package.
package models
