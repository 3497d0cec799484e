// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yamba/manager/internal/models"
)

// UpsertTitle inserts or refreshes a title's catalog metadata. Titles are
// owned by the backend; local rows mirror what callbacks and instance
// queues have reported.
func (db *DB) UpsertTitle(ctx context.Context, t *models.Title) error {
	stmt, err := db.stmt(ctx, `
		INSERT INTO titles (id, name, artist, duration, source) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			artist = excluded.artist,
			duration = excluded.duration,
			source = excluded.source`)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, t.ID, t.Name, t.Artist, t.Duration, t.Source); err != nil {
		return fmt.Errorf("upsert title: %w", err)
	}
	return nil
}

// GetTitle returns one title or ErrNotFound.
func (db *DB) GetTitle(ctx context.Context, id string) (*models.Title, error) {
	stmt, err := db.stmt(ctx, `SELECT id, name, artist, duration, source FROM titles WHERE id = ?`)
	if err != nil {
		return nil, err
	}
	var t models.Title
	err = stmt.QueryRowContext(ctx, id).Scan(&t.ID, &t.Name, &t.Artist, &t.Duration, &t.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get title: %w", err)
	}
	return &t, nil
}

// TitlesForPlaylist returns the titles associated with one playlist.
// Callbacks carry only ids, so the catalog row may lag behind the
// association; such titles are listed with the id standing in for the name
// rather than silently dropped.
func (db *DB) TitlesForPlaylist(ctx context.Context, playlistID uuid.UUID) ([]models.Title, error) {
	stmt, err := db.stmt(ctx, `
		SELECT ttp.title_id, COALESCE(t.name, ttp.title_id), t.artist,
			COALESCE(t.duration, 0), COALESCE(t.source, '')
		FROM titles_to_playlists ttp
		LEFT JOIN titles t ON t.id = ttp.title_id
		WHERE ttp.playlist_id = ?
		ORDER BY COALESCE(t.name, ttp.title_id)`)
	if err != nil {
		return nil, err
	}
	return db.scanTitles(ctx, stmt, playlistID.String())
}

// TitlesForQueue returns the titles in one instance's playback queue, in
// queue order.
func (db *DB) TitlesForQueue(ctx context.Context, instanceID int) ([]models.Title, error) {
	stmt, err := db.stmt(ctx, `
		SELECT q.title_id, COALESCE(t.name, q.title_id), t.artist,
			COALESCE(t.duration, 0), COALESCE(t.source, '')
		FROM queue_entries q
		LEFT JOIN titles t ON t.id = q.title_id
		WHERE q.instance_id = ?
		ORDER BY q.position`)
	if err != nil {
		return nil, err
	}
	return db.scanTitles(ctx, stmt, instanceID)
}

func (db *DB) scanTitles(ctx context.Context, stmt *sql.Stmt, arg any) ([]models.Title, error) {
	rows, err := stmt.QueryContext(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer closeQuietly(rows)

	titles := make([]models.Title, 0)
	for rows.Next() {
		var t models.Title
		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &t.Duration, &t.Source); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}
