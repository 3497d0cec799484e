// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package api

import (
	"errors"
	"net/http"

	"github.com/yamba/manager/internal/database"
	"github.com/yamba/manager/internal/library"
	"github.com/yamba/manager/internal/logging"
)

// writeServiceError maps engine errors onto HTTP responses. The sentinel
// taxonomy is intentionally coarse: validation faults are the caller's,
// resolution rejections are the submitted URL's, unreachability is the
// worker's, and everything persistent is ours.
func writeServiceError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrValidation):
		rw.Error(http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
	case errors.Is(err, database.ErrNotFound):
		rw.NotFound("resource not found")
	case errors.Is(err, database.ErrDuplicate):
		rw.Error(http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, library.ErrResolution):
		rw.Error(http.StatusUnprocessableEntity, ErrCodeResolutionFailed,
			"the worker refused to resolve the given URL")
	case errors.Is(err, library.ErrBackendUnreachable):
		rw.Error(http.StatusBadGateway, ErrCodeBackendUnavailable,
			"the resolution worker is unavailable")
	case errors.Is(err, library.ErrPersistence):
		logging.Error().Err(err).Msg("persistence error")
		rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "a storage error occurred")
	default:
		logging.Error().Err(err).Msg("unhandled service error")
		rw.InternalError("an unexpected error occurred")
	}
}
