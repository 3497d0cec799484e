// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yamba/manager/internal/models"
)

func newTestLedger(t *testing.T, ttl time.Duration) *Ledger {
	t.Helper()
	l, err := OpenInMemory(ttl)
	if err != nil {
		t.Fatalf("open in-memory ledger: %v", err)
	}
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("close ledger: %v", err)
		}
	})
	return l
}

func TestRecordAndLookup(t *testing.T) {
	l := newTestLedger(t, time.Hour)
	ctx := context.Background()

	entry := &Entry{
		Token:      "T1",
		PlaylistID: "9f0e7c2a-0000-0000-0000-000000000000",
		UserID:     "u1",
		Outcome:    string(models.JobOutcomeSuccess),
	}
	if err := l.Record(ctx, entry); err != nil {
		t.Fatalf("record: %v", err)
	}
	if entry.ConsumedAt.IsZero() {
		t.Error("ConsumedAt not stamped")
	}

	got, err := l.Lookup(ctx, "T1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Outcome != string(models.JobOutcomeSuccess) || got.UserID != "u1" {
		t.Errorf("entry = %+v", got)
	}
}

func TestLookupUnknownToken(t *testing.T) {
	l := newTestLedger(t, time.Hour)

	if _, err := l.Lookup(context.Background(), "missing"); !errors.Is(err, ErrNotRecorded) {
		t.Errorf("lookup = %v, want ErrNotRecorded", err)
	}
}

func TestEntriesExpire(t *testing.T) {
	l := newTestLedger(t, 50*time.Millisecond)
	ctx := context.Background()

	if err := l.Record(ctx, &Entry{Token: "brief", Outcome: string(models.JobOutcomeFailure)}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := l.Lookup(ctx, "brief"); err != nil {
		t.Fatalf("lookup before expiry: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, err := l.Lookup(ctx, "brief"); !errors.Is(err, ErrNotRecorded) {
		t.Errorf("lookup after expiry = %v, want ErrNotRecorded", err)
	}
}

func TestSize(t *testing.T) {
	l := newTestLedger(t, time.Hour)
	ctx := context.Background()

	for _, token := range []string{"a", "b", "c"} {
		if err := l.Record(ctx, &Entry{Token: token, Outcome: string(models.JobOutcomePartial)}); err != nil {
			t.Fatalf("record %s: %v", token, err)
		}
	}

	n, err := l.Size(ctx)
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if n != 3 {
		t.Errorf("size = %d, want 3", n)
	}
}

func TestClosedLedgerRejectsOperations(t *testing.T) {
	l, err := OpenInMemory(time.Hour)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ctx := context.Background()
	if err := l.Record(ctx, &Entry{Token: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("record = %v, want ErrClosed", err)
	}
	if _, err := l.Lookup(ctx, "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("lookup = %v, want ErrClosed", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("double close = %v, want nil", err)
	}
}
