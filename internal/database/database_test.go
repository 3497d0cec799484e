// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yamba/manager/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return db
}

func mustInsertPlaylist(t *testing.T, db *DB, name string) *models.Playlist {
	t.Helper()
	p := &models.Playlist{Name: name}
	if err := db.InsertPlaylist(context.Background(), p); err != nil {
		t.Fatalf("insert playlist %q: %v", name, err)
	}
	return p
}

func TestPlaylistLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := mustInsertPlaylist(t, db, "Road Trip")
	if p.ID == uuid.Nil {
		t.Fatal("playlist ID not assigned")
	}

	got, err := db.GetPlaylist(ctx, p.ID)
	if err != nil {
		t.Fatalf("get playlist: %v", err)
	}
	if got.Name != "Road Trip" {
		t.Errorf("Name = %q, want Road Trip", got.Name)
	}

	if err := db.DeletePlaylist(ctx, p.ID); err != nil {
		t.Fatalf("delete playlist: %v", err)
	}
	if _, err := db.GetPlaylist(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
	if err := db.DeletePlaylist(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestPlaylistSummariesCountsAndOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	older := &models.Playlist{Name: "older", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	if err := db.InsertPlaylist(ctx, older); err != nil {
		t.Fatalf("insert older: %v", err)
	}
	newer := mustInsertPlaylist(t, db, "newer")

	for _, id := range []string{"s1", "s2"} {
		if err := db.InsertAssociation(ctx, id, newer.ID); err != nil {
			t.Fatalf("insert association: %v", err)
		}
	}

	summaries, err := db.ListPlaylistSummaries(ctx)
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}
	if summaries[0].Name != "newer" {
		t.Errorf("first summary = %q, want newest first", summaries[0].Name)
	}
	if summaries[0].Titles != 2 || summaries[1].Titles != 0 {
		t.Errorf("title counts = %d/%d, want 2/0", summaries[0].Titles, summaries[1].Titles)
	}
}

func TestAssociationSetSemantics(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := mustInsertPlaylist(t, db, "p")

	if err := db.InsertAssociation(ctx, "s1", p.ID); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := db.InsertAssociation(ctx, "s1", p.ID); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate insert = %v, want ErrDuplicate", err)
	}

	ids, err := db.TitleIDsForPlaylist(ctx, p.ID)
	if err != nil {
		t.Fatalf("title ids: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("len(ids) = %d, want 1 (set semantics)", len(ids))
	}
}

func TestInsertAssociationsBatchTolerance(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := mustInsertPlaylist(t, db, "p")

	// s2 is pre-associated: the batch must skip it without failing.
	if err := db.InsertAssociation(ctx, "s2", p.ID); err != nil {
		t.Fatalf("pre-insert: %v", err)
	}

	result := db.InsertAssociations(ctx, p.ID, []string{"s1", "s2", "s3"})
	if result.Attempted != 3 {
		t.Errorf("Attempted = %d, want 3", result.Attempted)
	}
	if result.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", result.Succeeded)
	}
	if result.Clean() {
		t.Error("batch with a duplicate should not be clean")
	}

	ids, err := db.TitleIDsForPlaylist(ctx, p.ID)
	if err != nil {
		t.Fatalf("title ids: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("len(ids) = %d, want 3 (N-D growth)", len(ids))
	}
}

func TestConsumePendingJobSingleUse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := mustInsertPlaylist(t, db, "p")

	job := &models.PendingJob{Token: "T123", PlaylistID: p.ID, UserID: "u1"}
	if err := db.InsertPendingJob(ctx, job); err != nil {
		t.Fatalf("insert job: %v", err)
	}

	got, err := db.ConsumePendingJob(ctx, "T123")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got.PlaylistID != p.ID || got.UserID != "u1" {
		t.Errorf("consumed job = %+v", got)
	}

	if _, err := db.ConsumePendingJob(ctx, "T123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second consume = %v, want ErrNotFound", err)
	}
	if _, err := db.ConsumePendingJob(ctx, "never-issued"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown token = %v, want ErrNotFound", err)
	}
}

func TestConsumePendingJobConcurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := mustInsertPlaylist(t, db, "p")

	if err := db.InsertPendingJob(ctx, &models.PendingJob{Token: "race", PlaylistID: p.ID, UserID: "u1"}); err != nil {
		t.Fatalf("insert job: %v", err)
	}

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := db.ConsumePendingJob(ctx, "race"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1 consumer to observe the pending job", wins)
	}
}

func TestExpirePendingJobs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := mustInsertPlaylist(t, db, "p")

	old := &models.PendingJob{Token: "old", PlaylistID: p.ID, UserID: "u1", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	fresh := &models.PendingJob{Token: "fresh", PlaylistID: p.ID, UserID: "u2"}
	for _, j := range []*models.PendingJob{old, fresh} {
		if err := db.InsertPendingJob(ctx, j); err != nil {
			t.Fatalf("insert job %s: %v", j.Token, err)
		}
	}

	expired, err := db.ExpirePendingJobs(ctx, time.Now().UTC().Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if len(expired) != 1 || expired[0].Token != "old" {
		t.Fatalf("expired = %+v, want just the old job", expired)
	}

	// The expired token must no longer be consumable.
	if _, err := db.ConsumePendingJob(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("consume expired = %v, want ErrNotFound", err)
	}
	if _, err := db.ConsumePendingJob(ctx, "fresh"); err != nil {
		t.Errorf("fresh job should still be pending: %v", err)
	}
}

func TestCountTitleReferences(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := mustInsertPlaylist(t, db, "p")

	if err := db.UpsertTitle(ctx, &models.Title{ID: "s1", Name: "one"}); err != nil {
		t.Fatalf("upsert title: %v", err)
	}
	if err := db.InsertAssociation(ctx, "s1", p.ID); err != nil {
		t.Fatalf("insert association: %v", err)
	}
	if err := db.InsertQueueEntry(ctx, &models.QueueEntry{InstanceID: 1, TitleID: "s1", Position: 0}); err != nil {
		t.Fatalf("insert queue entry: %v", err)
	}

	count, err := db.CountTitleReferences(ctx, "s1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (association + queue entry)", count)
	}

	if err := db.DeleteAssociation(ctx, "s1", p.ID); err != nil {
		t.Fatalf("delete association: %v", err)
	}
	count, err = db.CountTitleReferences(ctx, "s1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (queue entry keeps the title in use)", count)
	}

	removed, err := db.DeleteQueueEntries(ctx, 1, "s1")
	if err != nil {
		t.Fatalf("delete queue entries: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	count, err = db.CountTitleReferences(ctx, "s1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestDeletePlaylistCascadesAssociations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := mustInsertPlaylist(t, db, "p")

	if err := db.InsertAssociation(ctx, "s1", p.ID); err != nil {
		t.Fatalf("insert association: %v", err)
	}
	if err := db.DeletePlaylist(ctx, p.ID); err != nil {
		t.Fatalf("delete playlist: %v", err)
	}

	count, err := db.CountTitleReferences(ctx, "s1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after cascade", count)
	}
}

func TestDeletePlaylistRetiresPendingJobs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := mustInsertPlaylist(t, db, "p")

	if err := db.InsertPendingJob(ctx, &models.PendingJob{Token: "T1", PlaylistID: p.ID, UserID: "u1"}); err != nil {
		t.Fatalf("insert job: %v", err)
	}
	if err := db.DeletePlaylist(ctx, p.ID); err != nil {
		t.Fatalf("delete playlist: %v", err)
	}

	// A late callback for the deleted playlist must find nothing.
	if _, err := db.ConsumePendingJob(ctx, "T1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("consume after playlist delete = %v, want ErrNotFound", err)
	}
}

func TestTitlesForPlaylistWithoutCatalogRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := mustInsertPlaylist(t, db, "p")

	// Association known only by id, no catalog metadata yet.
	if err := db.InsertAssociation(ctx, "s9", p.ID); err != nil {
		t.Fatalf("insert association: %v", err)
	}

	titles, err := db.TitlesForPlaylist(ctx, p.ID)
	if err != nil {
		t.Fatalf("titles for playlist: %v", err)
	}
	if len(titles) != 1 || titles[0].ID != "s9" || titles[0].Name != "s9" {
		t.Errorf("titles = %+v, want id standing in for name", titles)
	}
}

func TestInstances(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.UpsertInstance(ctx, &models.Instance{ID: 1, Name: "ts3-main"}); err != nil {
		t.Fatalf("upsert instance: %v", err)
	}
	if err := db.SetInstanceRunning(ctx, 1, true); err != nil {
		t.Fatalf("set running: %v", err)
	}
	if err := db.SetInstanceRunning(ctx, 99, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown instance = %v, want ErrNotFound", err)
	}

	instances, err := db.ListInstances(ctx)
	if err != nil {
		t.Fatalf("list instances: %v", err)
	}
	if len(instances) != 1 || !instances[0].Running {
		t.Errorf("instances = %+v", instances)
	}
}

func TestTitlesForQueueOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i, id := range []string{"s1", "s2"} {
		if err := db.UpsertTitle(ctx, &models.Title{ID: id, Name: id}); err != nil {
			t.Fatalf("upsert title: %v", err)
		}
		if err := db.InsertQueueEntry(ctx, &models.QueueEntry{InstanceID: 7, TitleID: id, Position: 1 - i}); err != nil {
			t.Fatalf("insert queue entry: %v", err)
		}
	}

	titles, err := db.TitlesForQueue(ctx, 7)
	if err != nil {
		t.Fatalf("titles for queue: %v", err)
	}
	if len(titles) != 2 || titles[0].ID != "s2" || titles[1].ID != "s1" {
		t.Errorf("queue order wrong: %+v", titles)
	}
}
