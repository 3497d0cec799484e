// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package models

// Event names as delivered to websocket clients. Global events go to every
// open connection; flash events carry a recipient and are dropped by the
// per-connection filter when the recipient does not match.
const (
	EventPlaylistsUpdated = "playlistsUpdated"
	EventTitlesUpdated    = "titlesUpdated"
	EventFlash            = "flash"
	EventInstancesUpdated = "instancesUpdated"
)

// QueuePlaylistID is the TitlesUpdated playlist discriminator for instance
// queues, which have no playlist UUID.
const QueuePlaylistID = "queue"

// PlaylistsUpdatedEvent carries the authoritative playlist list snapshot.
type PlaylistsUpdatedEvent struct {
	JSON []PlaylistSummary `json:"json"`
}

// TitlesUpdatedEvent carries the authoritative title list of one playlist,
// or of an instance queue when Playlist is QueuePlaylistID.
type TitlesUpdatedEvent struct {
	JSON     []Title `json:"json"`
	Playlist string  `json:"playlist"`
}

// Flash severity classes.
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashAlert   = "alert"
)

// FlashEvent is a user-targeted notification. UserID is advisory metadata:
// the bus delivers the event to every connection and the connection-side
// filter discards it everywhere but the recipient's sessions.
type FlashEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	UserID  string `json:"userID"`
}

// InstancesUpdatedEvent carries the authoritative instance list snapshot.
type InstancesUpdatedEvent struct {
	JSON []Instance `json:"json"`
}
