// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package cache provides the bounded in-process caches and the multi-pattern
// matcher used by the keyword scoring pipeline.
//
// Every process-wide memo table (pairwise similarity, pseudo-trend lookups)
// is held behind the Cache interface so its growth is capped by capacity:
//
//	var sims cache.Cache[cache.PairKey, float64] = cache.NewLRU[cache.PairKey, float64](10000, 0)
//	if v, ok := sims.Get(key); ok {
//	    return v
//	}
package cache

// Cache is the capability every bounded cache exposes.
type Cache[K comparable, V any] interface {
	// Get returns the value for key and marks it recently used.
	Get(key K) (V, bool)

	// Add inserts or replaces key, evicting the least recently used entry
	// when the cache is full.
	Add(key K, value V)

	// Remove deletes key and reports whether it was present.
	Remove(key K) bool

	// Len returns the number of live entries.
	Len() int

	// Clear drops every entry. Statistics are kept.
	Clear()

	// Stats returns a snapshot of hit, miss and eviction counters.
	Stats() Stats
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
}

// HitRate returns hits as a percentage of lookups, or 0 with no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// PairKey identifies an unordered pair of strings. Build it with NewPairKey so
// (a, b) and (b, a) map to the same entry.
type PairKey struct {
	Low  string
	High string
}

// NewPairKey returns the canonical key for the unordered pair {a, b}.
func NewPairKey(a, b string) PairKey {
	if a <= b {
		return PairKey{Low: a, High: b}
	}
	return PairKey{Low: b, High: a}
}
