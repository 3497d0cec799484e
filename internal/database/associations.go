// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/models"
)

// InsertAssociation links a title to a playlist. The composite primary key
// enforces set semantics; a pair that already exists returns ErrDuplicate
// without touching the row.
func (db *DB) InsertAssociation(ctx context.Context, titleID string, playlistID uuid.UUID) error {
	stmt, err := db.stmt(ctx, `
		INSERT INTO titles_to_playlists (title_id, playlist_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING`)
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(ctx, titleID, playlistID.String())
	if err != nil {
		return fmt.Errorf("insert association: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert association rows: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

// InsertAssociations links a batch of titles to a playlist and reports
// attempted vs succeeded counts. Per-item failures - duplicate pairs or
// transient persistence errors - are absorbed, never fatal to the batch:
// the backend gets exactly one terminal response per job and has no retry
// channel.
func (db *DB) InsertAssociations(ctx context.Context, playlistID uuid.UUID, titleIDs []string) models.BatchResult {
	result := models.BatchResult{Attempted: len(titleIDs)}
	for _, titleID := range titleIDs {
		switch err := db.InsertAssociation(ctx, titleID, playlistID); err {
		case nil:
			result.Succeeded++
		case ErrDuplicate:
			logging.Debug().
				Str("title_id", titleID).
				Str("playlist_id", playlistID.String()).
				Msg("skipping duplicate association")
		default:
			logging.Error().Err(err).
				Str("title_id", titleID).
				Str("playlist_id", playlistID.String()).
				Msg("association insert failed")
		}
	}
	return result
}

// DeleteAssociation removes one (title, playlist) pair. Returns ErrNotFound
// if the pair does not exist.
func (db *DB) DeleteAssociation(ctx context.Context, titleID string, playlistID uuid.UUID) error {
	stmt, err := db.stmt(ctx, `DELETE FROM titles_to_playlists WHERE title_id = ? AND playlist_id = ?`)
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(ctx, titleID, playlistID.String())
	if err != nil {
		return fmt.Errorf("delete association: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete association rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TitleIDsForPlaylist returns the ids of all titles associated with a
// playlist. The garbage collector snapshots this before the cascading
// delete so it knows which titles to reference-count afterwards.
func (db *DB) TitleIDsForPlaylist(ctx context.Context, playlistID uuid.UUID) ([]string, error) {
	stmt, err := db.stmt(ctx, `SELECT title_id FROM titles_to_playlists WHERE playlist_id = ?`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, playlistID.String())
	if err != nil {
		return nil, fmt.Errorf("title ids for playlist: %w", err)
	}
	defer closeQuietly(rows)

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan title id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountTitleReferences returns how many playlist associations plus queue
// entries still reference a title. Zero means the title is unreferenced and
// may be garbage-collected from the backend catalog.
func (db *DB) CountTitleReferences(ctx context.Context, titleID string) (int, error) {
	stmt, err := db.stmt(ctx, `
		SELECT
			(SELECT COUNT(*) FROM titles_to_playlists WHERE title_id = ?) +
			(SELECT COUNT(*) FROM queue_entries WHERE title_id = ?)`)
	if err != nil {
		return 0, err
	}
	var count int
	if err := stmt.QueryRowContext(ctx, titleID, titleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count title references: %w", err)
	}
	return count, nil
}
