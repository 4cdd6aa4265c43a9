// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/keyscope/internal/profile"
)

// ProfileStore implements profile.Store on BadgerDB.
type ProfileStore struct {
	db *DB
}

var _ profile.Store = (*ProfileStore)(nil)

// NewProfileStore creates a profile store over db.
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Interests returns userID's keyword counts, empty for unknown users.
func (s *ProfileStore) Interests(ctx context.Context, userID string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]int)
	err := s.db.db.View(func(txn *badger.Txn) error {
		return readProfile(txn, strings.TrimSpace(userID), out)
	})
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return out, nil
}

// Learn increments each keyword for userID.
func (s *ProfileStore) Learn(ctx context.Context, userID string, keywords []string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return profile.ErrBlankUser
	}
	keywords = profile.NormalizeKeywords(keywords)
	if len(keywords) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.update(func(txn *badger.Txn) error {
		counts := make(map[string]int)
		if err := readProfile(txn, userID, counts); err != nil {
			return err
		}
		for _, kw := range keywords {
			counts[kw]++
		}
		data, err := json.Marshal(counts)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		return txn.Set([]byte(profileKeyPrefix+userID), data)
	})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func readProfile(txn *badger.Txn, userID string, into map[string]int) error {
	item, err := txn.Get([]byte(profileKeyPrefix + userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, &into)
	})
}
