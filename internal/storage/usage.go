// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/keyscope/internal/quota"
)

// usageRecord is the stored value of one credential-day counter.
type usageRecord struct {
	Units     int       `json:"units"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsageStore implements quota.UsageStore on BadgerDB. Records expire after
// UsageTTL so old days clean themselves up.
type UsageStore struct {
	db  *DB
	ttl time.Duration
}

var _ quota.UsageStore = (*UsageStore)(nil)

// NewUsageStore creates a usage store over db.
func NewUsageStore(db *DB) *UsageStore {
	return &UsageStore{db: db, ttl: UsageTTL}
}

// LoadUsage returns credential id -> units for day.
func (s *UsageStore) LoadUsage(ctx context.Context, day string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]int)
	prefix := []byte(usageKeyPrefix + day + "/")
	err := s.db.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), string(prefix))
			err := item.Value(func(val []byte) error {
				var rec usageRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				out[id] = rec.Units
				return nil
			})
			if err != nil {
				return fmt.Errorf("decode usage %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list usage for %s: %w", day, err)
	}
	return out, nil
}

// SaveUsage overwrites the counter for one credential and day.
func (s *UsageStore) SaveUsage(ctx context.Context, day, id string, units int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(usageRecord{Units: units, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal usage: %w", err)
	}

	return s.db.update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(usageKeyPrefix+day+"/"+id), data).WithTTL(s.ttl)
		if err := txn.SetEntry(e); err != nil {
			return fmt.Errorf("set usage: %w", err)
		}
		return nil
	})
}
