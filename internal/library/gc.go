// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yamba/manager/internal/database"
	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/metrics"
)

// RemoveTitle drops one title from a playlist and garbage-collects the
// title if nothing references it anymore. Returns database.ErrNotFound if
// the pair does not exist; a worker failure after the committed local
// delete surfaces as ErrBackendUnreachable without rollback.
func (s *Service) RemoveTitle(ctx context.Context, playlistID uuid.UUID, titleID string) error {
	if err := s.store.DeleteAssociation(ctx, titleID, playlistID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	defer func() {
		s.publishPlaylists(ctx)
		s.publishPlaylistTitles(ctx, playlistID)
	}()

	return s.collectTitles(ctx, []string{titleID})
}

// RemoveQueueEntry drops one title from an instance's playback queue and
// garbage-collects the title if that was its last reference.
func (s *Service) RemoveQueueEntry(ctx context.Context, instanceID int, titleID string) error {
	removed, err := s.store.DeleteQueueEntries(ctx, instanceID, titleID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if removed == 0 {
		return database.ErrNotFound
	}

	defer s.publishQueueTitles(ctx, instanceID)

	return s.collectTitles(ctx, []string{titleID})
}

// DeletePlaylist removes a playlist with its associations and pending jobs,
// then garbage-collects every title the deletion orphaned. The snapshot of
// associated titles is taken before the cascading delete; the reference
// check runs after the commit, so a title kept alive by the very rows being
// deleted cannot slip through, and titles still referenced elsewhere are
// left untouched.
func (s *Service) DeletePlaylist(ctx context.Context, id uuid.UUID) error {
	snapshot, err := s.store.TitleIDsForPlaylist(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := s.store.DeletePlaylist(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.refreshPendingGauge(ctx)

	defer s.publishPlaylists(ctx)

	logging.Info().
		Str("playlist_id", id.String()).
		Int("candidate_titles", len(snapshot)).
		Msg("playlist deleted")

	return s.collectTitles(ctx, snapshot)
}

// collectTitles reference-counts the candidates and hands the unreferenced
// ones to the worker in a single batched delete. Per-title count failures
// are absorbed (the title simply survives until the next collection);
// worker failures surface as ErrBackendUnreachable so the caller knows the
// external catalog may now be stale.
func (s *Service) collectTitles(ctx context.Context, candidates []string) error {
	var dead []string
	for _, titleID := range candidates {
		refs, err := s.store.CountTitleReferences(ctx, titleID)
		if err != nil {
			logging.Error().Err(err).Str("title_id", titleID).Msg("reference count failed")
			continue
		}
		if refs == 0 {
			dead = append(dead, titleID)
		}
	}
	if len(dead) == 0 {
		return nil
	}

	if err := s.backend.DeleteTitles(ctx, dead); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	metrics.TitlesGarbageCollected.Add(float64(len(dead)))

	logging.Info().Int("titles", len(dead)).Msg("unreferenced titles deleted from backend catalog")
	return nil
}
