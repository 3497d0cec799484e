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

// UpsertInstance inserts or refreshes an instance row.
func (db *DB) UpsertInstance(ctx context.Context, inst *models.Instance) error {
	stmt, err := db.stmt(ctx, `
		INSERT INTO instances (id, name, running) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, running = excluded.running`)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, inst.ID, inst.Name, inst.Running); err != nil {
		return fmt.Errorf("upsert instance: %w", err)
	}
	return nil
}

// SetInstanceRunning updates an instance's running flag. Returns
// ErrNotFound for an unknown instance.
func (db *DB) SetInstanceRunning(ctx context.Context, id int, running bool) error {
	stmt, err := db.stmt(ctx, `UPDATE instances SET running = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(ctx, running, id)
	if err != nil {
		return fmt.Errorf("set instance running: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set instance running rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInstances returns all instances ordered by id. This is the
// authoritative payload of instancesUpdated.
func (db *DB) ListInstances(ctx context.Context) ([]models.Instance, error) {
	stmt, err := db.stmt(ctx, `SELECT id, name, running FROM instances ORDER BY id`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer closeQuietly(rows)

	instances := make([]models.Instance, 0)
	for rows.Next() {
		var inst models.Instance
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.Running); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}
