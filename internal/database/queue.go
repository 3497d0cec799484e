// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package database

import (
	"context"
	"fmt"

	"github.com/yamba/manager/internal/models"
)

// InsertQueueEntry appends a title reference to an instance's playback
// queue at the given position.
func (db *DB) InsertQueueEntry(ctx context.Context, e *models.QueueEntry) error {
	stmt, err := db.stmt(ctx, `INSERT INTO queue_entries (instance_id, title_id, position) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, e.InstanceID, e.TitleID, e.Position); err != nil {
		return fmt.Errorf("insert queue entry: %w", err)
	}
	return nil
}

// DeleteQueueEntries removes every entry for one title from an instance's
// queue and returns how many were removed. Zero removals with a nil error
// means the title was not queued there.
func (db *DB) DeleteQueueEntries(ctx context.Context, instanceID int, titleID string) (int, error) {
	stmt, err := db.stmt(ctx, `DELETE FROM queue_entries WHERE instance_id = ? AND title_id = ?`)
	if err != nil {
		return 0, err
	}
	res, err := stmt.ExecContext(ctx, instanceID, titleID)
	if err != nil {
		return 0, fmt.Errorf("delete queue entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete queue entries rows: %w", err)
	}
	return int(n), nil
}
