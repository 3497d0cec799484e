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

// InsertPendingJob records an accepted backend import, keyed by the
// backend-issued token.
func (db *DB) InsertPendingJob(ctx context.Context, job *models.PendingJob) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	stmt, err := db.stmt(ctx, `INSERT INTO pending_jobs (token, playlist_id, user_id, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, job.Token, job.PlaylistID.String(), job.UserID, job.CreatedAt); err != nil {
		return fmt.Errorf("insert pending job: %w", err)
	}
	return nil
}

// ConsumePendingJob atomically retires a pending job and returns it, or
// ErrNotFound if the token is unknown (already consumed, expired, or the
// playlist was deleted in the interim).
//
// The lookup and the delete are one conditional DELETE ... RETURNING so two
// concurrent callback deliveries for the same token can never both observe
// the job as pending. This single statement is the engine's idempotency
// guarantee.
func (db *DB) ConsumePendingJob(ctx context.Context, token string) (*models.PendingJob, error) {
	stmt, err := db.stmt(ctx, `
		DELETE FROM pending_jobs WHERE token = ?
		RETURNING token, playlist_id, user_id, created_at`)
	if err != nil {
		return nil, err
	}

	var (
		job   models.PendingJob
		rawID string
	)
	err = stmt.QueryRowContext(ctx, token).Scan(&job.Token, &rawID, &job.UserID, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume pending job: %w", err)
	}
	job.PlaylistID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse job playlist id %q: %w", rawID, err)
	}
	return &job, nil
}

// PendingJobCount returns the number of jobs still awaiting a callback.
func (db *DB) PendingJobCount(ctx context.Context) (int, error) {
	stmt, err := db.stmt(ctx, `SELECT COUNT(*) FROM pending_jobs`)
	if err != nil {
		return 0, err
	}
	var count int
	if err := stmt.QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("pending job count: %w", err)
	}
	return count, nil
}

// ExpirePendingJobs retires every pending job created before the cutoff and
// returns the retired jobs, so the sweeper can notify their owners. Uses the
// same conditional-delete shape as ConsumePendingJob: a job expired here can
// no longer be consumed by a late callback.
func (db *DB) ExpirePendingJobs(ctx context.Context, cutoff time.Time) ([]models.PendingJob, error) {
	stmt, err := db.stmt(ctx, `
		DELETE FROM pending_jobs WHERE created_at < ?
		RETURNING token, playlist_id, user_id, created_at`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("expire pending jobs: %w", err)
	}
	defer closeQuietly(rows)

	jobs := make([]models.PendingJob, 0)
	for rows.Next() {
		var (
			job   models.PendingJob
			rawID string
		)
		if err := rows.Scan(&job.Token, &rawID, &job.UserID, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expired job: %w", err)
		}
		job.PlaylistID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse job playlist id %q: %w", rawID, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
