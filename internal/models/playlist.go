// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package models

import (
	"time"

	"github.com/google/uuid"
)

// Playlist name length limits enforced at submission time.
const (
	PlaylistNameMinLen = 1
	PlaylistNameMaxLen = 50
)

// Playlist is a named, ordered-by-creation collection of title associations.
// The ID is assigned once on creation and never changes. Deleting a playlist
// cascades its associations but never the titles themselves.
type Playlist struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PlaylistSummary is the per-playlist row of the playlistsUpdated payload:
// id, name, and the current association count. Clients treat the full list
// as the authoritative snapshot, not a delta.
type PlaylistSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Titles int       `json:"titles"`
}

// Title is a resolved media entry owned by the backend catalog. Titles are
// shared: the same title may be associated with several playlists and sit in
// several instance queues at once. A title is deleted from the backend
// catalog only when nothing references it anymore.
type Title struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Artist   *string `json:"artist,omitempty"`
	Duration int     `json:"duration"` // seconds, non-negative
	Source   string  `json:"source"`
}

// Association links a title to a playlist. The (title, playlist) pair is a
// set member: the store rejects duplicate pairs and batch inserts tolerate
// the rejection per item.
type Association struct {
	TitleID    string    `json:"title_id"`
	PlaylistID uuid.UUID `json:"playlist_id"`
}
