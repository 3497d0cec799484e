// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yamba/manager/internal/database"
	"github.com/yamba/manager/internal/ledger"
	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/metrics"
	"github.com/yamba/manager/internal/models"
)

// HandleCallback reconciles one terminal worker callback. Exactly one
// delivery of a valid token does work; duplicates, late arrivals, and
// callbacks for deleted playlists are acknowledged as no-ops, because the
// worker has no retry channel and must always receive a definitive answer.
//
// Returns ErrValidation for missing required fields (the only error the
// worker is expected to act on) and nil for everything else.
func (s *Service) HandleCallback(ctx context.Context, cb *models.ResolveCallback) error {
	start := time.Now()

	if err := cb.Validate(); err != nil {
		metrics.CallbacksProcessed.WithLabelValues("invalid").Inc()
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Lookup and retire in one atomic step: a second delivery racing this
	// one cannot also observe the job as pending.
	job, err := s.store.ConsumePendingJob(ctx, cb.RequestID)
	if errors.Is(err, database.ErrNotFound) {
		s.logStaleCallback(ctx, cb.RequestID)
		metrics.CallbacksProcessed.WithLabelValues("stale").Inc()
		return nil
	}
	if err != nil {
		// The job may still be pending; the worker will not retry, so the
		// sweeper eventually closes it out.
		logging.Error().Err(err).Str("token", cb.RequestID).Msg("pending job lookup failed")
		metrics.CallbacksProcessed.WithLabelValues("error").Inc()
		return nil
	}
	s.refreshPendingGauge(ctx)

	name, err := s.store.PlaylistName(ctx, job.PlaylistID)
	if err != nil {
		logging.Warn().Err(err).Str("playlist_id", job.PlaylistID.String()).Msg("playlist name lookup failed")
	}

	outcome, flashType, flashMsg := s.applyOutcome(ctx, job, cb, name)

	s.publishPlaylists(ctx)
	s.publishPlaylistTitles(ctx, job.PlaylistID)
	s.bus.PublishFlash(ctx, flashType, flashMsg, job.UserID)

	s.recordRetired(ctx, job, outcome)

	metrics.CallbacksProcessed.WithLabelValues(string(outcome)).Inc()
	metrics.CallbackDuration.Observe(time.Since(start).Seconds())

	logging.Info().
		Str("token", job.Token).
		Str("playlist_id", job.PlaylistID.String()).
		Str("outcome", string(outcome)).
		Msg("callback reconciled")
	return nil
}

// applyOutcome folds the callback into the store and classifies the result.
// Per-item insert failures are absorbed into the attempted/succeeded counts;
// nothing here can fail the callback as a whole.
func (s *Service) applyOutcome(ctx context.Context, job *models.PendingJob, cb *models.ResolveCallback, name string) (models.JobOutcome, string, string) {
	if !cb.Success() {
		msg := cb.Message
		if msg == "" {
			msg = fmt.Sprintf("error code %d", *cb.ErrorCode)
		}
		return models.JobOutcomeFailure, models.FlashAlert, "An Error occurred: " + msg
	}

	result := s.store.InsertAssociations(ctx, job.PlaylistID, cb.SongIDs)
	if result.Clean() {
		return models.JobOutcomeSuccess, models.FlashSuccess,
			fmt.Sprintf("%d titles have been successfully loaded into %q", result.Succeeded, name)
	}
	return models.JobOutcomePartial, models.FlashWarning,
		fmt.Sprintf("%d out of %d have successfully been added to %q", result.Succeeded, result.Attempted, name)
}

// logStaleCallback explains a token miss using the retired-token ledger:
// a recorded token is a duplicate delivery, an unrecorded one belongs to a
// deleted playlist or was never issued.
func (s *Service) logStaleCallback(ctx context.Context, token string) {
	if entry, err := s.ledger.Lookup(ctx, token); err == nil {
		logging.Info().
			Str("token", token).
			Str("outcome", entry.Outcome).
			Time("consumed_at", entry.ConsumedAt).
			Msg("duplicate callback for retired job, ignoring")
		return
	}
	logging.Info().Str("token", token).Msg("callback for unknown job, ignoring")
}

// recordRetired writes the consumed token to the ledger. Failures are
// logged only; the ledger never gates reconciliation.
func (s *Service) recordRetired(ctx context.Context, job *models.PendingJob, outcome models.JobOutcome) {
	entry := ledger.Entry{
		Token:      job.Token,
		PlaylistID: job.PlaylistID.String(),
		UserID:     job.UserID,
		Outcome:    string(outcome),
	}
	if err := s.ledger.Record(ctx, &entry); err != nil {
		logging.Warn().Err(err).Str("token", job.Token).Msg("ledger record failed")
	}
}
