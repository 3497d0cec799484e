// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

/*
Package library is the engine core: playlist submission, asynchronous
callback reconciliation, association garbage collection, and the abandoned
job sweeper.

The Service owns no state of its own. All durable state lives behind the
Store interface, all notifications go through the EventPublisher, and all
worker traffic goes through the Backend - the service is pure coordination
between them, which is what makes the reconciliation semantics testable
with in-memory fakes.

Lifecycle of an import:

 1. Submit validates the name, persists the playlist, and forwards the
    source URL to the worker. The worker's accept token becomes a
    PendingJob row.
 2. The worker resolves the URL out of process and eventually posts a
    terminal callback.
 3. HandleCallback retires the PendingJob atomically (first delivery wins,
    every later delivery is a no-op), folds the reported title ids into
    associations, and fans the resulting state out: playlistsUpdated,
    titlesUpdated, and a flash targeted at the submitting user.
 4. If the callback never arrives, the sweeper retires the job after a TTL
    and tells the owner.

Deletion paths mirror step 3: commit the local delete, reference-count the
affected titles, hand the now-unreferenced ones to the worker in one batch,
and publish the same events - to a connected client, garbage collection and
job completion are indistinguishable.
*/
package library
