// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

/*
Package api provides the HTTP surface of the engine: the public music API
with the websocket endpoint, and the internal callback listener the
resolution worker reports to.

The two surfaces are served by separate listeners on separate ports.
Callback routes answer only on the callback port; hitting them on the
public port yields 403. That port split is the whole authorization story
for worker callbacks - the callback port is expected to be reachable by
the worker alone.
*/
package api
