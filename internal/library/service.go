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

	"github.com/google/uuid"

	"github.com/yamba/manager/internal/database"
	"github.com/yamba/manager/internal/ledger"
	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/metrics"
	"github.com/yamba/manager/internal/models"
)

// Store is the engine's view of the entity store. Implemented by
// *database.DB; tests substitute an in-memory fake.
type Store interface {
	InsertPlaylist(ctx context.Context, p *models.Playlist) error
	GetPlaylist(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	PlaylistName(ctx context.Context, id uuid.UUID) (string, error)
	DeletePlaylist(ctx context.Context, id uuid.UUID) error
	ListPlaylistSummaries(ctx context.Context) ([]models.PlaylistSummary, error)

	TitlesForPlaylist(ctx context.Context, playlistID uuid.UUID) ([]models.Title, error)
	TitlesForQueue(ctx context.Context, instanceID int) ([]models.Title, error)

	InsertAssociations(ctx context.Context, playlistID uuid.UUID, titleIDs []string) models.BatchResult
	DeleteAssociation(ctx context.Context, titleID string, playlistID uuid.UUID) error
	TitleIDsForPlaylist(ctx context.Context, playlistID uuid.UUID) ([]string, error)
	CountTitleReferences(ctx context.Context, titleID string) (int, error)

	InsertPendingJob(ctx context.Context, job *models.PendingJob) error
	ConsumePendingJob(ctx context.Context, token string) (*models.PendingJob, error)
	PendingJobCount(ctx context.Context) (int, error)
	ExpirePendingJobs(ctx context.Context, cutoff time.Time) ([]models.PendingJob, error)

	DeleteQueueEntries(ctx context.Context, instanceID int, titleID string) (int, error)

	UpsertInstance(ctx context.Context, inst *models.Instance) error
	SetInstanceRunning(ctx context.Context, id int, running bool) error
	ListInstances(ctx context.Context) ([]models.Instance, error)
}

// EventPublisher is the engine's view of the event bus. Publication is
// best-effort by contract, so none of these return errors.
type EventPublisher interface {
	PublishPlaylistsUpdated(ctx context.Context, summaries []models.PlaylistSummary)
	PublishTitlesUpdated(ctx context.Context, playlist string, titles []models.Title)
	PublishFlash(ctx context.Context, flashType, msg, userID string)
	PublishInstancesUpdated(ctx context.Context, instances []models.Instance)
}

// Backend is the engine's view of the import worker.
type Backend interface {
	CreateTitles(ctx context.Context, url string) (string, error)
	DeleteTitles(ctx context.Context, ids []string) error
	NotifyInstances(ctx context.Context)
}

// TokenLedger records retired callback tokens. Purely observational.
type TokenLedger interface {
	Record(ctx context.Context, entry *ledger.Entry) error
	Lookup(ctx context.Context, token string) (*ledger.Entry, error)
}

// Service coordinates the store, the bus, and the worker. Safe for
// concurrent use; every cross-request invariant is carried by an atomic
// store operation, not by locks here.
type Service struct {
	store   Store
	bus     EventPublisher
	backend Backend
	ledger  TokenLedger
}

// New creates the engine service.
func New(store Store, bus EventPublisher, backend Backend, tokens TokenLedger) *Service {
	return &Service{store: store, bus: bus, backend: backend, ledger: tokens}
}

// Summaries returns the current playlist list, newest first.
func (s *Service) Summaries(ctx context.Context) ([]models.PlaylistSummary, error) {
	summaries, err := s.store.ListPlaylistSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return summaries, nil
}

// PlaylistTitles returns the titles of one playlist, or
// database.ErrNotFound for an unknown playlist id.
func (s *Service) PlaylistTitles(ctx context.Context, id uuid.UUID) ([]models.Title, error) {
	if _, err := s.store.PlaylistName(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	titles, err := s.store.TitlesForPlaylist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return titles, nil
}

// QueueTitles returns the playback queue of one instance, in queue order.
func (s *Service) QueueTitles(ctx context.Context, instanceID int) ([]models.Title, error) {
	titles, err := s.store.TitlesForQueue(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return titles, nil
}

// Instances returns all known player instances.
func (s *Service) Instances(ctx context.Context) ([]models.Instance, error) {
	instances, err := s.store.ListInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return instances, nil
}

// NotifyInstances forwards an instance-refresh poke to the worker.
// Best-effort, mirrors the worker call's own semantics.
func (s *Service) NotifyInstances(ctx context.Context) {
	s.backend.NotifyInstances(ctx)
}

// publishPlaylists recomputes and broadcasts the authoritative playlist
// list. Used as the terminal side effect of every mutating path.
func (s *Service) publishPlaylists(ctx context.Context) {
	summaries, err := s.store.ListPlaylistSummaries(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("playlist summaries for event failed")
		return
	}
	s.bus.PublishPlaylistsUpdated(ctx, summaries)
}

// publishPlaylistTitles broadcasts the title list of one playlist.
func (s *Service) publishPlaylistTitles(ctx context.Context, playlistID uuid.UUID) {
	titles, err := s.store.TitlesForPlaylist(ctx, playlistID)
	if err != nil {
		logging.Error().Err(err).Str("playlist_id", playlistID.String()).Msg("titles for event failed")
		return
	}
	s.bus.PublishTitlesUpdated(ctx, playlistID.String(), titles)
}

// publishQueueTitles broadcasts one instance's queue under the "queue"
// playlist discriminator.
func (s *Service) publishQueueTitles(ctx context.Context, instanceID int) {
	titles, err := s.store.TitlesForQueue(ctx, instanceID)
	if err != nil {
		logging.Error().Err(err).Int("instance_id", instanceID).Msg("queue titles for event failed")
		return
	}
	s.bus.PublishTitlesUpdated(ctx, models.QueuePlaylistID, titles)
}

// publishInstances broadcasts the authoritative instance list.
func (s *Service) publishInstances(ctx context.Context) {
	instances, err := s.store.ListInstances(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("instances for event failed")
		return
	}
	s.bus.PublishInstancesUpdated(ctx, instances)
}

// refreshPendingGauge re-reads the pending job count for the gauge.
func (s *Service) refreshPendingGauge(ctx context.Context) {
	count, err := s.store.PendingJobCount(ctx)
	if err != nil {
		logging.Debug().Err(err).Msg("pending job count failed")
		return
	}
	metrics.PendingJobs.Set(float64(count))
}
