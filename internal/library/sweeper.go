// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package library

import (
	"context"
	"fmt"
	"time"

	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/metrics"
	"github.com/yamba/manager/internal/models"
)

// Sweeper periodically retires pending jobs whose callback never came, so
// an unreachable worker cannot grow the pending set without bound. A job
// expired here can no longer be consumed by a late callback - the late
// delivery becomes an ordinary stale no-op.
type Sweeper struct {
	service  *Service
	interval time.Duration
	maxAge   time.Duration
}

// NewSweeper creates a sweeper retiring jobs older than maxAge every
// interval.
func NewSweeper(service *Service, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{service: service, interval: interval, maxAge: maxAge}
}

// String names the sweeper for supervisor logs.
func (sw *Sweeper) String() string {
	return "job-sweeper"
}

// Serve runs the sweep loop until the context is canceled. Implements
// suture.Service.
func (sw *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	logging.Info().
		Dur("interval", sw.interval).
		Dur("max_age", sw.maxAge).
		Msg("abandoned job sweeper started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("abandoned job sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := sw.service.ExpireAbandonedJobs(ctx, sw.maxAge); err != nil {
				logging.Error().Err(err).Msg("job sweep failed")
			}
		}
	}
}

// ExpireAbandonedJobs retires every pending job older than maxAge and tells
// each owner via a warning flash. Returns how many jobs were retired.
func (s *Service) ExpireAbandonedJobs(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	expired, err := s.store.ExpirePendingJobs(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if len(expired) == 0 {
		return 0, nil
	}
	s.refreshPendingGauge(ctx)
	metrics.JobsExpired.Add(float64(len(expired)))

	for i := range expired {
		job := &expired[i]

		name, nameErr := s.store.PlaylistName(ctx, job.PlaylistID)
		if nameErr != nil {
			name = job.PlaylistID.String()
		}
		s.bus.PublishFlash(ctx, models.FlashWarning,
			fmt.Sprintf("The import into %q expired without a result", name), job.UserID)

		s.recordRetired(ctx, job, models.JobOutcomeExpired)

		logging.Warn().
			Str("token", job.Token).
			Str("playlist_id", job.PlaylistID.String()).
			Time("created_at", job.CreatedAt).
			Msg("pending job expired")
	}
	return len(expired), nil
}
