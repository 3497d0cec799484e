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
	"time"

	"github.com/google/uuid"

	"github.com/yamba/manager/internal/models"
)

// InsertPlaylist persists a new playlist. A zero ID is assigned, a zero
// CreatedAt is stamped.
func (db *DB) InsertPlaylist(ctx context.Context, p *models.Playlist) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	stmt, err := db.stmt(ctx, `INSERT INTO playlists (id, name, created_at) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, p.ID.String(), p.Name, p.CreatedAt); err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}
	return nil
}

// GetPlaylist returns one playlist or ErrNotFound.
func (db *DB) GetPlaylist(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	stmt, err := db.stmt(ctx, `SELECT id, name, created_at FROM playlists WHERE id = ?`)
	if err != nil {
		return nil, err
	}

	var (
		p     models.Playlist
		rawID string
	)
	err = stmt.QueryRowContext(ctx, id.String()).Scan(&rawID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	p.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse playlist id %q: %w", rawID, err)
	}
	return &p, nil
}

// PlaylistName returns just the name of a playlist, or ErrNotFound.
func (db *DB) PlaylistName(ctx context.Context, id uuid.UUID) (string, error) {
	stmt, err := db.stmt(ctx, `SELECT name FROM playlists WHERE id = ?`)
	if err != nil {
		return "", err
	}
	var name string
	err = stmt.QueryRowContext(ctx, id.String()).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("playlist name: %w", err)
	}
	return name, nil
}

// DeletePlaylist removes a playlist and cascades its associations and any
// still-pending import jobs in one transaction. Retiring the jobs here is
// what turns a late callback for a deleted playlist into a clean no-op.
// Titles themselves are never touched; reference counting and catalog
// deletion happen after the commit, in the library package.
// Returns ErrNotFound if the playlist does not exist.
func (db *DB) DeletePlaylist(ctx context.Context, id uuid.UUID) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete playlist: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete playlist rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM titles_to_playlists WHERE playlist_id = ?`, id.String()); err != nil {
		return fmt.Errorf("cascade associations: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_jobs WHERE playlist_id = ?`, id.String()); err != nil {
		return fmt.Errorf("cascade pending jobs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete playlist: %w", err)
	}
	return nil
}

// ListPlaylistSummaries returns every playlist with its association count,
// newest first. This is the authoritative payload of playlistsUpdated.
func (db *DB) ListPlaylistSummaries(ctx context.Context) ([]models.PlaylistSummary, error) {
	stmt, err := db.stmt(ctx, `
		SELECT p.id, p.name, COUNT(ttp.title_id)
		FROM playlists p
		LEFT JOIN titles_to_playlists ttp ON ttp.playlist_id = p.id
		GROUP BY p.id, p.name, p.created_at
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playlist summaries: %w", err)
	}
	defer closeQuietly(rows)

	summaries := make([]models.PlaylistSummary, 0)
	for rows.Next() {
		var (
			s     models.PlaylistSummary
			rawID string
		)
		if err := rows.Scan(&rawID, &s.Name, &s.Titles); err != nil {
			return nil, fmt.Errorf("scan playlist summary: %w", err)
		}
		s.ID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse playlist id %q: %w", rawID, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
