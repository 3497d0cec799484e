// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package models

// Instance is a player process managed by the backend. The engine only
// tracks identity and running state; lifecycle control is out of scope.
type Instance struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Running bool   `json:"running"`
}

// QueueEntry is a positioned reference from an instance's live playback
// queue to a title. Queue entries are independent of playlist associations
// and count as references for garbage collection.
type QueueEntry struct {
	InstanceID int    `json:"instance_id"`
	TitleID    string `json:"title_id"`
	Position   int    `json:"position"`
}

// Instance states reported by the backend's instance callback.
const (
	InstanceStateStarted = "Started"
	InstanceStateRunning = "Running"
	InstanceStateStopped = "Stopped"
)
