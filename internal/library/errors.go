// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package library

import "errors"

// Engine error taxonomy. The HTTP layer maps these to status codes;
// everything else in the tree wraps one of them.
var (
	// ErrValidation marks user-correctable bad input.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence marks a store failure; the operation was aborted.
	ErrPersistence = errors.New("persistence failed")

	// ErrBackendUnreachable marks a worker connectivity failure. Local
	// state committed before the failure is kept, never rolled back.
	ErrBackendUnreachable = errors.New("backend unreachable")

	// ErrResolution marks a worker that answered but refused the request.
	ErrResolution = errors.New("backend rejected request")
)
