// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

// Package validation wraps go-playground/validator v10 behind a
// thread-safe singleton with human-readable error translation.
//
//	type submitRequest struct {
//	    Name string `validate:"required,min=1,max=50"`
//	    URL  string `validate:"omitempty,url"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    // verr.Error() lists every failed field
//	}
//
// min and max on string fields count runes, matching the playlist name
// length rules.
package validation
