// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/yamba/manager/internal/validation"
)

// maxBodyBytes caps request bodies; nothing on this API carries more than
// a name, a URL, and a list of ids.
const maxBodyBytes = 1 << 20

// createPlaylistRequest is the body of POST /music/playlists. Name bounds
// count runes, not bytes.
type createPlaylistRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=50"`
	URL    string `json:"url" validate:"omitempty,url"`
	UserID string `json:"user_id"`
}

// decodeJSON reads and unmarshals a request body, rejecting trailing
// garbage. On failure a 400 has already been written.
func decodeJSON(rw *ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(rw.w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		rw.BadRequest("malformed JSON body: " + err.Error())
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		rw.BadRequest("request body must contain a single JSON object")
		return false
	}
	return true
}

// validateRequest runs struct validation and writes the 400 on failure.
func validateRequest(rw *ResponseWriter, req any) bool {
	verr := validation.ValidateStruct(req)
	if verr == nil {
		return true
	}
	rw.ValidationError(verr.Error(), verr.Violations())
	return false
}
