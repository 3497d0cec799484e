// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/yamba/manager/internal/config"
)

func testConfig(url string) config.BackendConfig {
	return config.BackendConfig{
		URL:               url,
		Timeout:           2 * time.Second,
		RequestsPerSecond: 1000,
		Burst:             1000,
		BreakerFailures:   3,
		BreakerTimeout:    time.Minute,
	}
}

func TestCreateTitlesAccepted(t *testing.T) {
	var gotPath string
	var gotBody createTitlesRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(createTitlesResponse{RequestID: "T42"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	token, err := client.CreateTitles(context.Background(), "https://lists.example/mix")
	if err != nil {
		t.Fatalf("CreateTitles: %v", err)
	}
	if token != "T42" {
		t.Errorf("token = %q, want T42", token)
	}
	if gotPath != "/new/titles" {
		t.Errorf("path = %q, want /new/titles", gotPath)
	}
	if gotBody.URL != "https://lists.example/mix" {
		t.Errorf("url = %q", gotBody.URL)
	}
}

func TestCreateTitlesRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.CreateTitles(context.Background(), "not-a-url"); !errors.Is(err, ErrRejected) {
		t.Errorf("err = %v, want ErrRejected", err)
	}
}

func TestCreateTitlesAcceptWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.CreateTitles(context.Background(), "https://lists.example/mix"); !errors.Is(err, ErrRejected) {
		t.Errorf("err = %v, want ErrRejected", err)
	}
}

func TestCreateTitlesUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := NewClient(testConfig(server.URL))
	if _, err := client.CreateTitles(context.Background(), "https://lists.example/mix"); !errors.Is(err, ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}

func TestServerErrorIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.CreateTitles(context.Background(), "https://lists.example/mix"); !errors.Is(err, ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}

func TestDeleteTitlesBatchesIDs(t *testing.T) {
	var gotBody deleteTitlesRequest
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/delete/titles" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if err := client.DeleteTitles(context.Background(), []string{"s1", "s2", "s3"}); err != nil {
		t.Fatalf("DeleteTitles: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want exactly 1", calls.Load())
	}
	if len(gotBody.Titles) != 3 {
		t.Errorf("titles = %v", gotBody.Titles)
	}
}

func TestDeleteTitlesEmptySkipsRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if err := client.DeleteTitles(context.Background(), nil); err != nil {
		t.Fatalf("DeleteTitles: %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}

func TestNotifyInstancesSwallowsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notify/updateInstances" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	// Must not panic or return anything even when the worker is down.
	client.NotifyInstances(context.Background())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := client.CreateTitles(ctx, "https://lists.example/mix"); !errors.Is(err, ErrUnreachable) {
			t.Fatalf("call %d: err = %v, want ErrUnreachable", i, err)
		}
	}

	// The breaker opens after 3 consecutive failures; later calls are
	// rejected locally without touching the wire.
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

func TestRejectionsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if _, err := client.CreateTitles(ctx, "not-a-url"); !errors.Is(err, ErrRejected) {
			t.Fatalf("call %d: err = %v, want ErrRejected", i, err)
		}
	}
	if calls.Load() != 6 {
		t.Errorf("server saw %d calls, want all 6 (rejections are not failures)", calls.Load())
	}
}
