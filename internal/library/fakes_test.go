// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package library

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yamba/manager/internal/database"
	"github.com/yamba/manager/internal/ledger"
	"github.com/yamba/manager/internal/models"
)

type assocKey struct {
	titleID    string
	playlistID uuid.UUID
}

// fakeStore is an in-memory Store with the same contract as the DuckDB
// implementation: set-semantics associations, single-consume jobs,
// reference counting across associations and queue entries.
type fakeStore struct {
	mu sync.Mutex

	playlists    map[uuid.UUID]models.Playlist
	order        []uuid.UUID // insertion order, newest last
	associations map[assocKey]bool
	pending      map[string]models.PendingJob
	queue        []models.QueueEntry
	instances    map[int]models.Instance

	insertPlaylistErr error
	insertJobErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		playlists:    make(map[uuid.UUID]models.Playlist),
		associations: make(map[assocKey]bool),
		pending:      make(map[string]models.PendingJob),
		instances:    make(map[int]models.Instance),
	}
}

func (f *fakeStore) InsertPlaylist(_ context.Context, p *models.Playlist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertPlaylistErr != nil {
		return f.insertPlaylistErr
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	f.playlists[p.ID] = *p
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakeStore) GetPlaylist(_ context.Context, id uuid.UUID) (*models.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playlists[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (f *fakeStore) PlaylistName(_ context.Context, id uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playlists[id]
	if !ok {
		return "", database.ErrNotFound
	}
	return p.Name, nil
}

func (f *fakeStore) DeletePlaylist(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.playlists[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.playlists, id)
	for key := range f.associations {
		if key.playlistID == id {
			delete(f.associations, key)
		}
	}
	for token, job := range f.pending {
		if job.PlaylistID == id {
			delete(f.pending, token)
		}
	}
	return nil
}

func (f *fakeStore) ListPlaylistSummaries(_ context.Context) ([]models.PlaylistSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summaries := make([]models.PlaylistSummary, 0, len(f.playlists))
	for i := len(f.order) - 1; i >= 0; i-- {
		p, ok := f.playlists[f.order[i]]
		if !ok {
			continue
		}
		count := 0
		for key := range f.associations {
			if key.playlistID == p.ID {
				count++
			}
		}
		summaries = append(summaries, models.PlaylistSummary{ID: p.ID, Name: p.Name, Titles: count})
	}
	return summaries, nil
}

func (f *fakeStore) TitlesForPlaylist(_ context.Context, playlistID uuid.UUID) ([]models.Title, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var titles []models.Title
	for key := range f.associations {
		if key.playlistID == playlistID {
			titles = append(titles, models.Title{ID: key.titleID, Name: key.titleID})
		}
	}
	sort.Slice(titles, func(i, j int) bool { return titles[i].ID < titles[j].ID })
	return titles, nil
}

func (f *fakeStore) TitlesForQueue(_ context.Context, instanceID int) ([]models.Title, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]models.QueueEntry, 0)
	for _, e := range f.queue {
		if e.InstanceID == instanceID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	titles := make([]models.Title, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, models.Title{ID: e.TitleID, Name: e.TitleID})
	}
	return titles, nil
}

func (f *fakeStore) InsertAssociations(_ context.Context, playlistID uuid.UUID, titleIDs []string) models.BatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := models.BatchResult{Attempted: len(titleIDs)}
	for _, titleID := range titleIDs {
		key := assocKey{titleID: titleID, playlistID: playlistID}
		if f.associations[key] {
			continue
		}
		f.associations[key] = true
		result.Succeeded++
	}
	return result
}

func (f *fakeStore) DeleteAssociation(_ context.Context, titleID string, playlistID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := assocKey{titleID: titleID, playlistID: playlistID}
	if !f.associations[key] {
		return database.ErrNotFound
	}
	delete(f.associations, key)
	return nil
}

func (f *fakeStore) TitleIDsForPlaylist(_ context.Context, playlistID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for key := range f.associations {
		if key.playlistID == playlistID {
			ids = append(ids, key.titleID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeStore) CountTitleReferences(_ context.Context, titleID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for key := range f.associations {
		if key.titleID == titleID {
			count++
		}
	}
	for _, e := range f.queue {
		if e.TitleID == titleID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) InsertPendingJob(_ context.Context, job *models.PendingJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertJobErr != nil {
		return f.insertJobErr
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	f.pending[job.Token] = *job
	return nil
}

func (f *fakeStore) ConsumePendingJob(_ context.Context, token string) (*models.PendingJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.pending[token]
	if !ok {
		return nil, database.ErrNotFound
	}
	delete(f.pending, token)
	return &job, nil
}

func (f *fakeStore) PendingJobCount(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending), nil
}

func (f *fakeStore) ExpirePendingJobs(_ context.Context, cutoff time.Time) ([]models.PendingJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired []models.PendingJob
	for token, job := range f.pending {
		if job.CreatedAt.Before(cutoff) {
			expired = append(expired, job)
			delete(f.pending, token)
		}
	}
	return expired, nil
}

func (f *fakeStore) DeleteQueueEntries(_ context.Context, instanceID int, titleID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.queue[:0]
	removed := 0
	for _, e := range f.queue {
		if e.InstanceID == instanceID && e.TitleID == titleID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	f.queue = kept
	return removed, nil
}

func (f *fakeStore) UpsertInstance(_ context.Context, inst *models.Instance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instances[inst.ID] = *inst
	return nil
}

func (f *fakeStore) SetInstanceRunning(_ context.Context, id int, running bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inst, ok := f.instances[id]
	if !ok {
		return database.ErrNotFound
	}
	inst.Running = running
	f.instances[id] = inst
	return nil
}

func (f *fakeStore) ListInstances(_ context.Context) ([]models.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	instances := make([]models.Instance, 0, len(f.instances))
	for _, inst := range f.instances {
		instances = append(instances, inst)
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].ID < instances[j].ID })
	return instances, nil
}

// addAssociation seeds a pair directly, bypassing the batch fold.
func (f *fakeStore) addAssociation(titleID string, playlistID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.associations[assocKey{titleID: titleID, playlistID: playlistID}] = true
}

func (f *fakeStore) addQueueEntry(instanceID int, titleID string, position int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, models.QueueEntry{InstanceID: instanceID, TitleID: titleID, Position: position})
}

func (f *fakeStore) hasAssociation(titleID string, playlistID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.associations[assocKey{titleID: titleID, playlistID: playlistID}]
}

func (f *fakeStore) pendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// publishedEvent is one fakeBus record.
type publishedEvent struct {
	name     string
	playlist string // titlesUpdated discriminator
	flash    models.FlashEvent
}

type fakeBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *fakeBus) PublishPlaylistsUpdated(_ context.Context, _ []models.PlaylistSummary) {
	b.record(publishedEvent{name: models.EventPlaylistsUpdated})
}

func (b *fakeBus) PublishTitlesUpdated(_ context.Context, playlist string, _ []models.Title) {
	b.record(publishedEvent{name: models.EventTitlesUpdated, playlist: playlist})
}

func (b *fakeBus) PublishFlash(_ context.Context, flashType, msg, userID string) {
	b.record(publishedEvent{name: models.EventFlash, flash: models.FlashEvent{Type: flashType, Message: msg, UserID: userID}})
}

func (b *fakeBus) PublishInstancesUpdated(_ context.Context, _ []models.Instance) {
	b.record(publishedEvent{name: models.EventInstancesUpdated})
}

func (b *fakeBus) record(e publishedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *fakeBus) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func (b *fakeBus) flashes() []models.FlashEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.FlashEvent
	for _, e := range b.events {
		if e.name == models.EventFlash {
			out = append(out, e.flash)
		}
	}
	return out
}

func (b *fakeBus) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

type fakeBackend struct {
	mu          sync.Mutex
	token       string
	createErr   error
	deleteErr   error
	deleteCalls [][]string
	notified    int
}

func (b *fakeBackend) CreateTitles(_ context.Context, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return "", b.createErr
	}
	return b.token, nil
}

func (b *fakeBackend) DeleteTitles(_ context.Context, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	call := make([]string, len(ids))
	copy(call, ids)
	b.deleteCalls = append(b.deleteCalls, call)
	return nil
}

func (b *fakeBackend) NotifyInstances(_ context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notified++
}

func (b *fakeBackend) calls() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deleteCalls
}

type fakeLedger struct {
	mu      sync.Mutex
	entries map[string]ledger.Entry
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[string]ledger.Entry)}
}

func (l *fakeLedger) Record(_ context.Context, entry *ledger.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.ConsumedAt.IsZero() {
		entry.ConsumedAt = time.Now().UTC()
	}
	l.entries[entry.Token] = *entry
	return nil
}

func (l *fakeLedger) Lookup(_ context.Context, token string) (*ledger.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[token]
	if !ok {
		return nil, ledger.ErrNotRecorded
	}
	return &entry, nil
}
