// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

/*
Package websocket fans engine events out to connected browser sessions.

The hub broadcasts every event to every registered connection; a
per-connection filter then decides what each session actually receives.
Global events (playlistsUpdated, titlesUpdated, instancesUpdated) pass every
filter. Flash events carry a recipient and are discarded on connections
belonging to other users, so targeting costs nothing inside the hub itself.

Delivery is best-effort. A client whose send buffer is full is disconnected
rather than allowed to stall the hub, and clients recover missed state from
the authoritative HTTP endpoints on reconnect.

Each client runs two goroutines:
  - readPump: reads from the socket, answers pings, detects disconnects
  - writePump: writes hub messages and keepalive pings

The Bridge subscribes to the event bus and forwards bus messages into the
hub; it is run as a supervised service next to the hub itself.
*/
package websocket
