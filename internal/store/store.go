// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/adobe-destination/internal/metrics"
	"github.com/tomtom215/adobe-destination/internal/models"
)

const (
	// snapshotKey is the BadgerDB key holding the accepted initial settings.
	snapshotKey = "settings:initial"
)

// ErrStoreClosed is returned after Close.
var ErrStoreClosed = errors.New("settings store is closed")

// Snapshot is the persisted form of the accepted initial settings.
type Snapshot struct {
	Settings models.Map `json:"settings"`
	SavedAt  time.Time  `json:"saved_at"`
}

// SettingsStore persists the settings blob of the accepted initial update so
// a restarted process can replay it before the host sends anything.
type SettingsStore struct {
	db     *badger.DB
	closed atomic.Bool
}

// Open opens (or creates) a BadgerDB settings store at path.
func Open(path string) (*SettingsStore, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = true

	// Reduce logging verbosity
	opts.Logger = nil

	return open(opts)
}

// OpenInMemory opens a store that lives only for the process lifetime.
func OpenInMemory() (*SettingsStore, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*SettingsStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	return &SettingsStore{db: db}, nil
}

// Save replaces the stored snapshot with settings.
func (s *SettingsStore) Save(_ context.Context, settings models.Map) (err error) {
	defer func() { metrics.RecordSettingsStore("save", err) }()

	if s.closed.Load() {
		return ErrStoreClosed
	}

	data, err := json.Marshal(Snapshot{Settings: settings, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal settings snapshot: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKey), data)
	})
}

// Load returns the stored settings. The bool is false when nothing has been
// saved yet.
func (s *SettingsStore) Load(ctx context.Context) (models.Map, bool, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil || snap == nil {
		return nil, false, err
	}
	return snap.Settings, true, nil
}

// Snapshot returns the stored snapshot, or nil when none exists.
func (s *SettingsStore) Snapshot(_ context.Context) (snap *Snapshot, err error) {
	defer func() { metrics.RecordSettingsStore("load", err) }()

	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	var found Snapshot
	var ok bool
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		ok = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &found)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load settings snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &found, nil
}

// Clear removes the stored snapshot.
func (s *SettingsStore) Clear(_ context.Context) (err error) {
	defer func() { metrics.RecordSettingsStore("clear", err) }()

	if s.closed.Load() {
		return ErrStoreClosed
	}

	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(snapshotKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Already cleared
		}
		return err
	})
}

// Close closes the underlying database. It is safe to call more than once.
func (s *SettingsStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
