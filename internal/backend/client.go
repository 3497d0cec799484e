// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

// Package backend is the HTTP client for the import worker. The worker
// resolves playlist URLs into titles asynchronously and reports back through
// the callback endpoints; this client covers the submit and maintenance
// calls that originate on our side.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/yamba/manager/internal/config"
	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/metrics"
)

var (
	// ErrRejected indicates the worker answered but refused the request.
	ErrRejected = errors.New("backend rejected request")

	// ErrUnreachable indicates the worker could not be reached, answered
	// with a server error, or the circuit breaker is open.
	ErrUnreachable = errors.New("backend unreachable")
)

// createTitlesRequest is the submit payload for /new/titles.
type createTitlesRequest struct {
	URL string `json:"url"`
}

// createTitlesResponse carries the job token the worker issues on accept.
type createTitlesResponse struct {
	RequestID string `json:"request_id"`
}

// deleteTitlesRequest is the batched garbage-collection payload.
type deleteTitlesRequest struct {
	Titles []string `json:"titles"`
}

// httpResult is what a breaker-protected request yields: the terminal status
// and body. Worker-side rejections (4xx) travel here as data, not as breaker
// failures, so a misbehaving caller cannot trip the circuit.
type httpResult struct {
	status int
	body   []byte
}

// Client talks to the import worker with rate limiting and circuit breaker
// protection. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[*httpResult]
}

// NewClient creates a worker client from configuration.
func NewClient(cfg config.BackendConfig) *Client {
	cbName := "backend-worker"
	failures := cfg.BreakerFailures
	if failures <= 0 {
		failures = 5
	}

	cb := gobreaker.NewCircuitBreaker[*httpResult](gobreaker.Settings{
		Name:    cbName,
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("backend circuit breaker state change")
		},
	})

	return &Client{
		baseURL:    cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cb:         cb,
	}
}

// CreateTitles submits a playlist URL for asynchronous import and returns the
// worker-issued job token. A 202 means accepted; any other worker answer is
// ErrRejected, and connectivity trouble is ErrUnreachable.
func (c *Client) CreateTitles(ctx context.Context, url string) (string, error) {
	start := time.Now()
	result, err := c.post(ctx, "/new/titles", createTitlesRequest{URL: url})
	if err != nil {
		metrics.ObserveBackendRequest("create_titles", "unreachable", start)
		return "", err
	}
	if result.status != http.StatusAccepted {
		metrics.ObserveBackendRequest("create_titles", "rejected", start)
		return "", fmt.Errorf("%w: status %d", ErrRejected, result.status)
	}

	var resp createTitlesResponse
	if err := json.Unmarshal(result.body, &resp); err != nil {
		metrics.ObserveBackendRequest("create_titles", "rejected", start)
		return "", fmt.Errorf("%w: malformed accept body: %v", ErrRejected, err)
	}
	if resp.RequestID == "" {
		metrics.ObserveBackendRequest("create_titles", "rejected", start)
		return "", fmt.Errorf("%w: accept without request_id", ErrRejected)
	}

	metrics.ObserveBackendRequest("create_titles", "success", start)
	return resp.RequestID, nil
}

// DeleteTitles asks the worker to drop unreferenced titles from its catalog.
// One call per garbage collection, however many titles died.
func (c *Client) DeleteTitles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	start := time.Now()
	result, err := c.post(ctx, "/delete/titles", deleteTitlesRequest{Titles: ids})
	if err != nil {
		metrics.ObserveBackendRequest("delete_titles", "unreachable", start)
		return err
	}
	if result.status < 200 || result.status >= 300 {
		metrics.ObserveBackendRequest("delete_titles", "rejected", start)
		return fmt.Errorf("%w: status %d", ErrRejected, result.status)
	}

	metrics.ObserveBackendRequest("delete_titles", "success", start)
	return nil
}

// NotifyInstances pokes the worker to refresh its instance processes.
// Best-effort: failures are logged, never returned.
func (c *Client) NotifyInstances(ctx context.Context) {
	start := time.Now()
	result, err := c.post(ctx, "/notify/updateInstances", struct{}{})
	if err != nil {
		metrics.ObserveBackendRequest("notify_instances", "unreachable", start)
		logging.Warn().Err(err).Msg("instance notify failed")
		return
	}
	if result.status < 200 || result.status >= 300 {
		metrics.ObserveBackendRequest("notify_instances", "rejected", start)
		logging.Warn().Int("status", result.status).Msg("instance notify rejected")
		return
	}
	metrics.ObserveBackendRequest("notify_instances", "success", start)
}

// post runs one rate-limited, breaker-protected POST. Transport errors and
// 5xx answers count as breaker failures and surface as ErrUnreachable; any
// other status is returned to the caller for interpretation.
func (c *Client) post(ctx context.Context, path string, payload any) (*httpResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", path, err)
	}

	result, err := c.cb.Execute(func() (*httpResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("server error: status %d", resp.StatusCode)
		}
		return &httpResult{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return result, nil
}
