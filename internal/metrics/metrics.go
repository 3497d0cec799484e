// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

// Package metrics provides Prometheus instrumentation for the engine:
// callback reconciliation outcomes, event bus throughput, websocket
// connections, backend client health, and pending-job pressure.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Callback reconciliation

	CallbacksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamba_callbacks_processed_total",
			Help: "Terminal backend callbacks processed, by outcome",
		},
		[]string{"outcome"}, // success, partial, failure, stale, invalid
	)

	CallbackDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "yamba_callback_duration_seconds",
			Help:    "Duration of callback reconciliation",
			Buckets: prometheus.DefBuckets,
		},
	)

	PendingJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yamba_pending_jobs",
			Help: "Pending import jobs awaiting a backend callback",
		},
	)

	JobsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamba_jobs_expired_total",
			Help: "Pending jobs retired by the abandoned-job sweeper",
		},
	)

	// Event bus

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamba_events_published_total",
			Help: "Events published on the bus, by event name",
		},
		[]string{"event"},
	)

	// Websocket fan-out

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yamba_websocket_clients",
			Help: "Currently connected websocket clients",
		},
	)

	WebsocketDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamba_websocket_dropped_total",
			Help: "Messages dropped because a client send buffer was full",
		},
	)

	FlashFiltered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamba_flash_filtered_total",
			Help: "Flash events discarded by the per-connection recipient filter",
		},
	)

	// Backend worker client

	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamba_backend_requests_total",
			Help: "Outbound backend worker requests, by operation and result",
		},
		[]string{"operation", "result"}, // result: ok, rejected, unreachable
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yamba_backend_request_duration_seconds",
			Help:    "Duration of backend worker requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Garbage collection

	TitlesGarbageCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamba_titles_garbage_collected_total",
			Help: "Unreferenced titles handed to the backend for catalog deletion",
		},
	)

	// HTTP surface

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamba_http_requests_total",
			Help: "HTTP requests served, by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yamba_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yamba_http_active_requests",
			Help: "HTTP requests currently in flight",
		},
	)
)

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, path, status string, start time.Time) {
	HTTPRequests.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
}

// ObserveBackendRequest records one outbound worker call.
func ObserveBackendRequest(operation, result string, start time.Time) {
	BackendRequests.WithLabelValues(operation, result).Inc()
	BackendRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
