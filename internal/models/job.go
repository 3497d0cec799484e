// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingJob correlates an accepted backend import with the playlist it will
// populate. The token is issued by the backend at submission time and is the
// only legal lookup key for callbacks. Existence of the row means the job is
// pending; the row is removed exactly once, by the first valid callback or
// by the abandoned-job sweeper.
type PendingJob struct {
	Token      string    `json:"token"`
	PlaylistID uuid.UUID `json:"playlist_id"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// JobOutcome classifies a retired job for logging, metrics, and the
// consumed-token ledger.
type JobOutcome string

const (
	JobOutcomeSuccess JobOutcome = "success"
	JobOutcomePartial JobOutcome = "partial"
	JobOutcomeFailure JobOutcome = "failure"
	JobOutcomeExpired JobOutcome = "expired"
)

// BatchResult reports how a batch insert went: how many inserts were
// attempted and how many actually landed. Attempted == Succeeded means a
// clean batch; anything less is a partial outcome.
type BatchResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
}

// Clean reports whether every attempted insert succeeded.
func (r BatchResult) Clean() bool {
	return r.Attempted == r.Succeeded
}
