// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/yamba/manager/internal/metrics"
)

// Prometheus instruments every request with count, duration, and in-flight
// gauges. The raw URL path is used as the path label; the route surface is
// small and fixed, so label cardinality stays bounded.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPActiveRequests.Inc()
		defer metrics.HTTPActiveRequests.Dec()

		start := time.Now()
		wrapper := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		metrics.ObserveHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(wrapper.status), start)
	})
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
