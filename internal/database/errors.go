// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package database

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row. Callback
	// reconciliation treats it as a benign no-op; direct user lookups
	// surface it as a 404.
	ErrNotFound = errors.New("database: not found")

	// ErrDuplicate is returned when an insert violates set semantics,
	// e.g. a (title, playlist) pair that already exists.
	ErrDuplicate = errors.New("database: duplicate")
)
