// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package services

import (
	"context"
	"testing"
	"time"
)

type fakeHub struct {
	served chan struct{}
}

func (f *fakeHub) RunWithContext(ctx context.Context) error {
	close(f.served)
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubServiceDelegates(t *testing.T) {
	hub := &fakeHub{served: make(chan struct{})}
	svc := NewWebSocketHubService(hub)

	if got := svc.String(); got != "websocket-hub" {
		t.Fatalf("String() = %q, want %q", got, "websocket-hub")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	select {
	case <-hub.served:
	case <-time.After(time.Second):
		t.Fatal("hub run loop never started")
	}
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
