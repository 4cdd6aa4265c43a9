// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package profile records which keywords each user has searched for.
//
// Profiles are append-only: every completed search adds one occurrence per
// keyword and nothing decays or expires. The counts feed the personalization
// stage of the keyword scorer.
package profile

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrBlankUser is returned when a learn call has no user identifier.
var ErrBlankUser = errors.New("user id is required")

// Store persists user interest profiles.
type Store interface {
	// Interests returns keyword -> occurrence count for userID. An unknown
	// user yields an empty map and no error.
	Interests(ctx context.Context, userID string) (map[string]int, error)

	// Learn adds one occurrence for each keyword to userID's profile,
	// creating the profile on first use.
	Learn(ctx context.Context, userID string, keywords []string) error
}

// NormalizeKeywords lower-cases, trims and drops blank keywords. Duplicates
// within one call count once.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// MemoryStore keeps profiles in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]map[string]int)}
}

// Interests returns a copy of userID's profile.
func (m *MemoryStore) Interests(_ context.Context, userID string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.profiles[strings.TrimSpace(userID)]
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}

// Learn increments each keyword in userID's profile.
func (m *MemoryStore) Learn(_ context.Context, userID string, keywords []string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrBlankUser
	}
	keywords = NormalizeKeywords(keywords)
	if len(keywords) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		p = make(map[string]int, len(keywords))
		m.profiles[userID] = p
	}
	for _, kw := range keywords {
		p[kw]++
	}
	return nil
}

// Users returns the number of profiles held.
func (m *MemoryStore) Users() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}
