// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, float64](3, 0)
	c.Add("a", 0.1)
	c.Add("b", 0.2)
	c.Add("c", 0.3)

	if v, found := c.Get("b"); !found || v != 0.2 {
		t.Errorf("Expected b=0.2, got %v (found=%v)", v, found)
	}
	if c.Len() != 3 {
		t.Errorf("Expected len 3, got %d", c.Len())
	}
	if !c.Remove("a") {
		t.Error("Expected Remove to report present key")
	}
	if c.Remove("a") {
		t.Error("Expected second Remove to report missing key")
	}
	if c.Contains("a") {
		t.Error("Expected 'a' to be gone")
	}
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](3, 0)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// 'a' becomes most recently used, so 'b' is the eviction victim
	c.Get("a")
	c.Add("d", 4)

	if _, found := c.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, found := c.Get(k); !found {
			t.Errorf("Expected '%s' to be present", k)
		}
	}
	if stats := c.Stats(); stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestLRU_UpdateRefreshesRecency(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](2, 0)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("a", 10)
	c.Add("c", 3)

	if v, found := c.Get("a"); !found || v != 10 {
		t.Errorf("Expected a=10 to survive, got %v (found=%v)", v, found)
	}
	if _, found := c.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRU[string, string](10, time.Hour).WithClock(func() time.Time { return now })

	c.Add("trend", "cached")
	if _, found := c.Get("trend"); !found {
		t.Fatal("Expected fresh entry to be found")
	}

	now = now.Add(61 * time.Minute)
	if _, found := c.Get("trend"); found {
		t.Error("Expected expired entry to be dropped")
	}
	if c.Len() != 0 {
		t.Errorf("Expected expired entry to be removed, len=%d", c.Len())
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRU[int, int](10, time.Minute).WithClock(func() time.Time { return now })
	for i := 0; i < 5; i++ {
		c.Add(i, i)
	}

	now = now.Add(2 * time.Minute)
	c.Add(99, 99)

	if removed := c.CleanupExpired(); removed != 5 {
		t.Errorf("Expected 5 removed, got %d", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry left, got %d", c.Len())
	}
}

func TestLRU_StatsAndHitRate(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](0, 0)
	c.Add("x", 1)
	c.Get("x")
	c.Get("x")
	c.Get("y")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Expected 2 hits / 1 miss, got %d / %d", stats.Hits, stats.Misses)
	}
	if stats.Capacity != DefaultCapacity {
		t.Errorf("Expected default capacity %d, got %d", DefaultCapacity, stats.Capacity)
	}
	if rate := stats.HitRate(); rate < 66.6 || rate > 66.7 {
		t.Errorf("Expected hit rate ~66.67, got %f", rate)
	}
	if (Stats{}).HitRate() != 0 {
		t.Error("Expected zero hit rate with no lookups")
	}
}

func TestLRU_GetOrAdd(t *testing.T) {
	t.Parallel()

	c := NewLRU[PairKey, float64](4, 0)
	calls := 0
	compute := func() float64 {
		calls++
		return 0.8
	}

	c.GetOrAdd(NewPairKey("운동", "헬스"), compute)
	v := c.GetOrAdd(NewPairKey("헬스", "운동"), compute)

	if v != 0.8 {
		t.Errorf("Expected 0.8, got %f", v)
	}
	if calls != 1 {
		t.Errorf("Expected compute to run once for an unordered pair, ran %d times", calls)
	}
}

func TestLRU_Clear(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](5, 0)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Len())
	}
	c.Add("c", 3)
	if _, found := c.Get("c"); !found {
		t.Error("Expected cache to be usable after Clear")
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](100, 0)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g*500+i)%250)
				c.Add(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Expected capacity bound 100, got %d", c.Len())
	}
}

func TestNewPairKey_Unordered(t *testing.T) {
	t.Parallel()

	if NewPairKey("a", "b") != NewPairKey("b", "a") {
		t.Error("Expected pair keys to be order independent")
	}
	if NewPairKey("a", "a").Low != "a" {
		t.Error("Expected identical pair to keep its term")
	}
}
