// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package cache

import (
	"sync"
	"time"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 10000

type lruEntry[K comparable, V any] struct {
	key       K
	value     V
	prev      *lruEntry[K, V]
	next      *lruEntry[K, V]
	expiresAt time.Time
}

// LRU is a thread-safe least-recently-used cache with optional TTL.
//
// Get, Add and Remove are O(1): a map indexes nodes of a doubly-linked list
// whose head side holds the most recently used entry. Expired entries are
// dropped lazily on access or by CleanupExpired.
type LRU[K comparable, V any] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[K]*lruEntry[K, V]

	// head.next is the most recently used entry, tail.prev the least.
	head *lruEntry[K, V]
	tail *lruEntry[K, V]

	hits      int64
	misses    int64
	evictions int64
}

var _ Cache[string, int] = (*LRU[string, int])(nil)

// NewLRU creates an LRU holding at most capacity entries. A ttl of zero
// keeps entries until they are evicted.
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl < 0 {
		ttl = 0
	}

	c := &LRU[K, V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[K]*lruEntry[K, V], capacity),
		head:     &lruEntry[K, V]{},
		tail:     &lruEntry[K, V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// WithClock replaces the time source. Used by tests exercising TTL expiry.
func (c *LRU[K, V]) WithClock(now func() time.Time) *LRU[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns the value for key if present and not expired.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.expired(entry) {
		c.removeEntry(entry)
		c.misses++
		return zero, false
	}

	c.moveToFront(entry)
	c.hits++
	return entry.value, true
}

// Contains reports whether key is present without touching recency or stats.
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	return ok && !c.expired(entry)
}

// Add inserts or replaces key.
func (c *LRU[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	if entry, ok := c.items[key]; ok {
		entry.value = value
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}

	entry := &lruEntry[K, V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// GetOrAdd returns the cached value for key, computing and storing it with
// compute on a miss. compute runs outside the lock, so two concurrent misses
// on the same key may both compute; the last Add wins.
func (c *LRU[K, V]) GetOrAdd(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Add(key, v)
	return v
}

// Remove deletes key.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		c.removeEntry(entry)
		return true
	}
	return false
}

// Len returns the number of entries, including expired ones not yet collected.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear drops every entry.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*lruEntry[K, V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired removes expired entries and returns how many were dropped.
func (c *LRU[K, V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl == 0 {
		return 0
	}

	removed := 0
	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if c.expired(entry) {
			c.removeEntry(entry)
			removed++
		}
		entry = prev
	}
	return removed
}

// Stats returns the current counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
		Capacity:  c.capacity,
	}
}

// Internal methods, called with mu held.

func (c *LRU[K, V]) expired(entry *lruEntry[K, V]) bool {
	return c.ttl > 0 && c.now().After(entry.expiresAt)
}

func (c *LRU[K, V]) addToFront(entry *lruEntry[K, V]) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *LRU[K, V]) moveToFront(entry *lruEntry[K, V]) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *LRU[K, V]) removeEntry(entry *lruEntry[K, V]) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

func (c *LRU[K, V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
	c.evictions++
}
