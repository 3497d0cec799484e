// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/yamba/manager/internal/config"
)

// routeMiddleware builds the per-group middleware from server config.
type routeMiddleware struct {
	cors      func(http.Handler) http.Handler
	rateReqs  int
	rateEvery time.Duration
}

func newRouteMiddleware(cfg config.ServerConfig) *routeMiddleware {
	requests := cfg.RateLimitRequests
	if requests <= 0 {
		requests = 100
	}
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	return &routeMiddleware{
		cors: cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			MaxAge:         86400,
		}),
		rateReqs:  requests,
		rateEvery: window,
	}
}

// CORS is applied globally so OPTIONS preflights reach it.
func (m *routeMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit limits the public music API per client IP. Callback routes are
// exempt: the worker must never have a terminal report throttled away.
func (m *routeMiddleware) RateLimit() func(http.Handler) http.Handler {
	return httprate.Limit(m.rateReqs, m.rateEvery, httprate.WithKeyFuncs(httprate.KeyByIP))
}

// RateLimitWebsocket limits websocket upgrade attempts. Connections are
// long-lived, so the upgrade rate is all that needs limiting.
func (m *routeMiddleware) RateLimitWebsocket() func(http.Handler) http.Handler {
	return httprate.LimitByIP(30, time.Minute)
}

// securityHeaders adds the standard API hardening headers.
func securityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}
