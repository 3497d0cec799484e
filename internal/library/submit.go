// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package library

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/yamba/manager/internal/backend"
	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/models"
)

// SubmitStatus distinguishes the two success shapes of a submission.
type SubmitStatus string

const (
	// SubmitCreated: playlist persisted, no import job (empty URL).
	SubmitCreated SubmitStatus = "created"

	// SubmitAccepted: playlist persisted and the worker accepted the
	// import; a callback will arrive later.
	SubmitAccepted SubmitStatus = "accepted"
)

// SubmitRequest is one playlist submission.
type SubmitRequest struct {
	Name   string
	URL    string
	UserID string
}

// SubmitResult reports a successful submission.
type SubmitResult struct {
	Status   SubmitStatus
	Playlist models.Playlist
}

// Submit creates a playlist and, when a source URL is given, hands the
// import to the worker and records the pending job under the worker-issued
// token.
//
// The playlist survives every failure past its own insert: a worker that is
// down or refuses the URL leaves the user with an empty playlist to delete
// or retry from, never a half-rolled-back store. Every path past validation
// ends by broadcasting the current playlist list, errors included, so
// clients converge on server truth no matter how the submission went.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	nameLen := utf8.RuneCountInString(req.Name)
	if nameLen < models.PlaylistNameMinLen || nameLen > models.PlaylistNameMaxLen {
		return nil, fmt.Errorf("%w: name length %d outside [%d,%d]",
			ErrValidation, nameLen, models.PlaylistNameMinLen, models.PlaylistNameMaxLen)
	}

	playlist := models.Playlist{Name: req.Name}
	if err := s.store.InsertPlaylist(ctx, &playlist); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	defer s.publishPlaylists(ctx)

	if req.URL == "" {
		logging.Info().
			Str("playlist_id", playlist.ID.String()).
			Str("name", playlist.Name).
			Msg("playlist created without import")
		return &SubmitResult{Status: SubmitCreated, Playlist: playlist}, nil
	}

	token, err := s.backend.CreateTitles(ctx, req.URL)
	if err != nil {
		if errors.Is(err, backend.ErrRejected) {
			return nil, fmt.Errorf("%w: %v", ErrResolution, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}

	job := models.PendingJob{Token: token, PlaylistID: playlist.ID, UserID: req.UserID}
	if err := s.store.InsertPendingJob(ctx, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.refreshPendingGauge(ctx)

	logging.Info().
		Str("playlist_id", playlist.ID.String()).
		Str("token", token).
		Str("user_id", req.UserID).
		Msg("import accepted by backend")

	return &SubmitResult{Status: SubmitAccepted, Playlist: playlist}, nil
}
