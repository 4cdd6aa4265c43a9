// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package storage persists user profiles and credential usage in BadgerDB.
//
// Keys are namespaced by prefix:
//
//	profile/<user id>         -> JSON map keyword -> count
//	usage/<YYYY-MM-DD>/<id>   -> JSON usage record, expires after UsageTTL
//
// Values are encoded with goccy/go-json.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Key prefixes for BadgerDB storage
const (
	profileKeyPrefix = "profile/"
	usageKeyPrefix   = "usage/"
)

const (
	// UsageTTL bounds how long a day's usage record is kept.
	UsageTTL = 48 * time.Hour

	maxTxnRetries = 3
)

// ErrClosed is returned by operations on a closed database.
var ErrClosed = errors.New("storage is closed")

// Config configures the database.
type Config struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string `koanf:"path" json:"path"`

	// InMemory keeps all data in memory; nothing survives a restart.
	InMemory bool `koanf:"in_memory" json:"in_memory"`

	// SyncWrites fsyncs every commit.
	SyncWrites bool `koanf:"sync_writes" json:"sync_writes"`

	// GCRatio is the value log discard ratio used by RunGC.
	GCRatio float64 `koanf:"gc_ratio" json:"gc_ratio"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Path:    "/data/keyscope",
		GCRatio: 0.5,
	}
}

// DB wraps a BadgerDB handle.
type DB struct {
	db       *badger.DB
	inMemory bool
	gcRatio  float64
}

// Open opens (or creates) the database.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(cfg Config, logger zerolog.Logger) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("storage path is required unless in_memory is set")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	ratio := cfg.GCRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}

	logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Storage opened")
	return &DB{db: db, inMemory: cfg.InMemory, gcRatio: ratio}, nil
}

// Close flushes and closes the database.
func (d *DB) Close() error {
	if d.db.IsClosed() {
		return nil
	}
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}

// RunGC reclaims value log space until nothing is left to rewrite.
func (d *DB) RunGC() error {
	if d.inMemory {
		return nil
	}
	if d.db.IsClosed() {
		return ErrClosed
	}
	for {
		err := d.db.RunValueLogGC(d.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (d *DB) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = d.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}
