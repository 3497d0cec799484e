// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yamba/manager/internal/library"
	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/models"
	ws "github.com/yamba/manager/internal/websocket"
)

// Handler implements every route of both listeners. ready is the readiness
// probe, usually the database ping.
type Handler struct {
	service     *library.Service
	hub         *ws.Hub
	ready       func(ctx context.Context) error
	corsOrigins []string
}

// NewHandler creates the HTTP handler set. ready may be nil, in which case
// /health only reports liveness.
func NewHandler(service *library.Service, hub *ws.Hub, ready func(ctx context.Context) error, corsOrigins []string) *Handler {
	return &Handler{service: service, hub: hub, ready: ready, corsOrigins: corsOrigins}
}

// CreatePlaylist handles POST /music/playlists. An empty url answers 201
// with the finished playlist; a non-empty url answers 202 once the worker
// has accepted the import.
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req createPlaylistRequest
	if !decodeJSON(rw, r, &req) {
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	result, err := h.service.Submit(r.Context(), library.SubmitRequest{
		Name:   req.Name,
		URL:    req.URL,
		UserID: req.UserID,
	})
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	payload := map[string]any{
		"id":   result.Playlist.ID,
		"name": result.Playlist.Name,
	}
	if result.Status == library.SubmitCreated {
		rw.Created(payload)
		return
	}
	rw.Accepted(payload)
}

// ListPlaylists handles GET /music/playlists.
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	summaries, err := h.service.Summaries(r.Context())
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(summaries)
}

// DeletePlaylist handles DELETE /music/playlists/{id}.
func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := parsePlaylistID(rw, r)
	if !ok {
		return
	}
	if err := h.service.DeletePlaylist(r.Context(), id); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.NoContent()
}

// PlaylistTitles handles GET /music/playlists/{id}/titles.
func (h *Handler) PlaylistTitles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := parsePlaylistID(rw, r)
	if !ok {
		return
	}
	titles, err := h.service.PlaylistTitles(r.Context(), id)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(titles)
}

// RemoveTitle handles DELETE /music/playlists/{id}/titles/{titleID}.
func (h *Handler) RemoveTitle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := parsePlaylistID(rw, r)
	if !ok {
		return
	}
	titleID := chi.URLParam(r, "titleID")
	if titleID == "" {
		rw.BadRequest("title id is required")
		return
	}
	if err := h.service.RemoveTitle(r.Context(), id, titleID); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.NoContent()
}

// QueueTitles handles GET /music/queue/{instanceID}.
func (h *Handler) QueueTitles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	instanceID, ok := parseInstanceID(rw, r)
	if !ok {
		return
	}
	titles, err := h.service.QueueTitles(r.Context(), instanceID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(titles)
}

// RemoveQueueEntry handles DELETE /music/queue/{instanceID}/{titleID}.
func (h *Handler) RemoveQueueEntry(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	instanceID, ok := parseInstanceID(rw, r)
	if !ok {
		return
	}
	titleID := chi.URLParam(r, "titleID")
	if titleID == "" {
		rw.BadRequest("title id is required")
		return
	}
	if err := h.service.RemoveQueueEntry(r.Context(), instanceID, titleID); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.NoContent()
}

// Instances handles GET /music/instances.
func (h *Handler) Instances(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	instances, err := h.service.Instances(r.Context())
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(instances)
}

// Notify handles POST /music/notify: a passthrough poke telling the worker
// to re-announce its instances. Best-effort, always 202.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	h.service.NotifyInstances(r.Context())
	rw.Accepted(map[string]string{"status": "notified"})
}

// TitlesCallback handles POST /callback/titles, the worker's terminal
// report for an import job. Answers 200 whether the token was live or
// stale; the worker never retries, so both are definitive.
func (h *Handler) TitlesCallback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var cb models.ResolveCallback
	if !decodeJSON(rw, r, &cb) {
		return
	}
	if err := h.service.HandleCallback(r.Context(), &cb); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(map[string]string{"status": "ok"})
}

// InstanceCallback handles POST /callback/instance, the worker's report of
// a player instance state change.
func (h *Handler) InstanceCallback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var cb models.InstanceCallback
	if !decodeJSON(rw, r, &cb) {
		return
	}
	if err := h.service.HandleInstanceCallback(r.Context(), &cb); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(map[string]string{"status": "ok"})
}

// CallbackForbidden answers callback paths reached over the public
// listener. The 403 tells a misconfigured worker it dialed the wrong port
// without leaking whether the token exists.
func (h *Handler) CallbackForbidden(w http.ResponseWriter, r *http.Request) {
	logging.Warn().
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Msg("callback rejected on public port")
	NewResponseWriter(w, r).Forbidden("callbacks are accepted on the callback port only")
}

// WebSocket handles GET /ws. A user_id query parameter scopes flash
// messages to that user; without it the connection receives no
// user-addressed flashes.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		NewResponseWriter(w, r).ServiceUnavailable("websocket service unavailable")
		return
	}

	upgrader := gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      h.checkWebsocketOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	userID := r.URL.Query().Get("user_id")
	client := ws.NewClient(h.hub, conn, ws.RecipientFilter(userID))
	h.hub.Register <- client
	client.Start()
}

// checkWebsocketOrigin validates upgrade origins against the CORS list.
// Requests without an Origin header (non-browser clients) are allowed.
func (h *Handler) checkWebsocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.corsOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("websocket upgrade rejected: origin not allowed")
	return false
}

// Health handles GET /health. Reports degraded with a 503 when the
// readiness probe fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := map[string]any{
		"status":            "ok",
		"websocket_clients": h.clientCount(),
	}
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logging.Error().Err(err).Msg("readiness probe failed")
			rw.ServiceUnavailable("database unavailable")
			return
		}
	}
	rw.Success(status)
}

func (h *Handler) clientCount() int {
	if h.hub == nil {
		return 0
	}
	return h.hub.ClientCount()
}

func parsePlaylistID(rw *ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest("playlist id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseInstanceID(rw *ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "instanceID"))
	if err != nil {
		rw.BadRequest("instance id must be an integer")
		return 0, false
	}
	return id, true
}
