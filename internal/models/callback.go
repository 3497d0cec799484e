// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package models

// ResolveCallback is the backend's terminal report for an import job.
// ErrorCode 0 means success and SongIDs carries the resolved title ids;
// any other code means failure and Message may carry human-readable detail.
// There is no partial-failure code on the wire - partial outcomes are
// computed from per-item insert results on our side.
//
// ErrorCode is a pointer so a missing field can be told apart from an
// explicit 0; both request_id and error_code are required.
type ResolveCallback struct {
	RequestID string   `json:"request_id"`
	SongIDs   []string `json:"song_ids"`
	ErrorCode *int     `json:"error_code"`
	Message   string   `json:"message"`
}

// Validate checks the required callback fields.
func (c *ResolveCallback) Validate() error {
	if c.RequestID == "" {
		return &FieldError{Field: "request_id", Message: "required"}
	}
	if c.ErrorCode == nil {
		return &FieldError{Field: "error_code", Message: "required"}
	}
	return nil
}

// Success reports whether the backend resolved every item of the job.
func (c *ResolveCallback) Success() bool {
	return c.ErrorCode != nil && *c.ErrorCode == 0
}

// InstanceCallback is the backend's report of an instance state change.
type InstanceCallback struct {
	ID    int    `json:"id"`
	State string `json:"state"`
}

// Validate checks the required instance callback fields.
func (c *InstanceCallback) Validate() error {
	if c.State == "" {
		return &FieldError{Field: "state", Message: "required"}
	}
	return nil
}

// FieldError reports a missing or malformed request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}
