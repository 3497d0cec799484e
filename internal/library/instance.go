// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/yamba/manager/internal/database"
	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/models"
)

// HandleInstanceCallback applies a worker-reported instance state change
// and broadcasts the updated instance list. An instance the store has not
// seen yet is created on the fly; the worker is authoritative for instance
// existence.
func (s *Service) HandleInstanceCallback(ctx context.Context, cb *models.InstanceCallback) error {
	if err := cb.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var running bool
	switch cb.State {
	case models.InstanceStateStarted, models.InstanceStateRunning:
		running = true
	case models.InstanceStateStopped:
		running = false
	default:
		return fmt.Errorf("%w: unknown instance state %q", ErrValidation, cb.State)
	}

	err := s.store.SetInstanceRunning(ctx, cb.ID, running)
	if errors.Is(err, database.ErrNotFound) {
		inst := models.Instance{
			ID:      cb.ID,
			Name:    fmt.Sprintf("instance-%d", cb.ID),
			Running: running,
		}
		err = s.store.UpsertInstance(ctx, &inst)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.publishInstances(ctx)

	logging.Info().
		Int("instance_id", cb.ID).
		Str("state", cb.State).
		Msg("instance state updated")
	return nil
}
