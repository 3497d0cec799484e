// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package database

import (
	"context"
	"fmt"
	"time"
)

// createTables creates the engine schema if not present.
//
// titles_to_playlists carries a composite primary key so the store itself
// rejects duplicate (title, playlist) pairs; pending_jobs is keyed by the
// backend-issued token so a token can be consumed at most once.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS playlists (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS titles (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			artist VARCHAR,
			duration INTEGER NOT NULL DEFAULT 0 CHECK (duration >= 0),
			source VARCHAR NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS titles_to_playlists (
			title_id VARCHAR NOT NULL,
			playlist_id VARCHAR NOT NULL,
			PRIMARY KEY (title_id, playlist_id)
		)`,
		`CREATE TABLE IF NOT EXISTS pending_jobs (
			token VARCHAR PRIMARY KEY,
			playlist_id VARCHAR NOT NULL,
			user_id VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS queue_entries (
			instance_id INTEGER NOT NULL,
			title_id VARCHAR NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (instance_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS instances (
			id INTEGER PRIMARY KEY,
			name VARCHAR NOT NULL,
			running BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ttp_playlist ON titles_to_playlists (playlist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_title ON queue_entries (title_id)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_created ON pending_jobs (created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
