// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package websocket

import "github.com/yamba/manager/internal/models"

// RecipientFilter scopes flash messages to one user's sessions. Global
// events and unaddressed flashes pass untouched; the fan-out core itself
// stays recipient-unaware.
func RecipientFilter(userID string) FilterFunc {
	return func(msg Message) bool {
		if msg.Event != models.EventFlash {
			return true
		}
		return msg.Recipient == "" || msg.Recipient == userID
	}
}
