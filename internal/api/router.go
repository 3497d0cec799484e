// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yamba/manager/internal/config"
	"github.com/yamba/manager/internal/middleware"
)

// Router builds the handler trees for the two listeners.
type Router struct {
	handler *Handler
	mw      *routeMiddleware
}

// NewRouter creates a router for the given handlers and server config.
func NewRouter(handler *Handler, cfg config.ServerConfig) *Router {
	return &Router{handler: handler, mw: newRouteMiddleware(cfg)}
}

// Public returns the handler tree of the public listener: the music API,
// the websocket endpoint, metrics, and health. Callback paths are
// registered too, but answer 403; they belong to the callback listener.
func (router *Router) Public() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS())

	r.Route("/music", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(securityHeaders())
		r.Use(middleware.Prometheus)
		r.Use(middleware.Compression)

		r.Post("/playlists", router.handler.CreatePlaylist)
		r.Get("/playlists", router.handler.ListPlaylists)
		r.Delete("/playlists/{id}", router.handler.DeletePlaylist)
		r.Get("/playlists/{id}/titles", router.handler.PlaylistTitles)
		r.Delete("/playlists/{id}/titles/{titleID}", router.handler.RemoveTitle)

		r.Get("/queue/{instanceID}", router.handler.QueueTitles)
		r.Delete("/queue/{instanceID}/{titleID}", router.handler.RemoveQueueEntry)

		r.Get("/instances", router.handler.Instances)
		r.Post("/notify", router.handler.Notify)
	})

	// Wrong-port callbacks get a definitive refusal instead of a 404.
	r.Route("/callback", func(r chi.Router) {
		r.Use(middleware.Prometheus)
		r.Post("/titles", router.handler.CallbackForbidden)
		r.Post("/instance", router.handler.CallbackForbidden)
	})

	r.With(router.mw.RateLimitWebsocket()).Get("/ws", router.handler.WebSocket)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", router.handler.Health)

	return r
}

// Callback returns the handler tree of the internal callback listener.
// No rate limiting: a terminal worker report must never be throttled.
func (router *Router) Callback() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Prometheus)

	r.Post("/callback/titles", router.handler.TitlesCallback)
	r.Post("/callback/instance", router.handler.InstanceCallback)
	r.Get("/health", router.handler.Health)

	return r
}
