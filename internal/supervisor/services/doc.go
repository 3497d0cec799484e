// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

// Package services wraps components that do not natively implement
// suture.Service so they can run under the supervisor tree.
//
// Components that already expose Serve(ctx) error and String() (the
// event bridge, the job sweeper) are added to the tree directly and
// need no wrapper here.
package services
