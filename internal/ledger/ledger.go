// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

// Package ledger keeps a durable record of consumed callback tokens.
//
// The record is observational: idempotency is already enforced by the
// conditional delete in the entity store, so the ledger never gates a
// callback. It exists so operators can answer "what happened to token X"
// after the pending job row is gone, and so repeated deliveries of a retired
// token can be logged with their original outcome.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ErrNotRecorded indicates the token has no ledger entry, either because it
// was never consumed or because its entry aged out.
var ErrNotRecorded = errors.New("token not recorded")

// ErrClosed indicates the ledger has been closed.
var ErrClosed = errors.New("ledger is closed")

const keyPrefix = "token:"

// Entry is one consumed token record.
type Entry struct {
	Token      string    `json:"token"`
	PlaylistID string    `json:"playlist_id"`
	UserID     string    `json:"user_id"`
	Outcome    string    `json:"outcome"`
	ConsumedAt time.Time `json:"consumed_at"`
}

// Ledger is a BadgerDB-backed consumed-token record with per-entry TTL.
type Ledger struct {
	db     *badger.DB
	ttl    time.Duration
	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the ledger at path. Entries expire after ttl.
func Open(path string, ttl time.Duration) (*Ledger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB internal logs
	// Token records are tiny; keep value log files small
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for token ledger: %w", err)
	}
	return &Ledger{db: db, ttl: ttl}, nil
}

// OpenInMemory creates an ephemeral ledger for tests.
func OpenInMemory(ttl time.Duration) (*Ledger, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger db: %w", err)
	}
	return &Ledger{db: db, ttl: ttl}, nil
}

func makeKey(token string) []byte {
	return append([]byte(keyPrefix), []byte(token)...)
}

// Record stores a consumed token entry. ConsumedAt is stamped here if unset.
func (l *Ledger) Record(ctx context.Context, entry *Entry) error {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrClosed
	}
	l.mu.RUnlock()

	if entry.ConsumedAt.IsZero() {
		entry.ConsumedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal ledger entry: %w", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(makeKey(entry.Token), data)
		if l.ttl > 0 {
			e = e.WithTTL(l.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("record token %s: %w", entry.Token, err)
	}
	return nil
}

// Lookup returns the entry for a consumed token, or ErrNotRecorded.
func (l *Ledger) Lookup(ctx context.Context, token string) (*Entry, error) {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return nil, ErrClosed
	}
	l.mu.RUnlock()

	var entry Entry
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeKey(token))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotRecorded
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotRecorded) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup token %s: %w", token, err)
	}
	return &entry, nil
}

// Size returns the number of recorded tokens still in the ledger.
func (l *Ledger) Size(ctx context.Context) (int, error) {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return 0, ErrClosed
	}
	l.mu.RUnlock()

	count := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}
