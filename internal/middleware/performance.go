// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/keyscope/internal/logging"
)

// DefaultSlowRequestThreshold is the latency above which a request is logged
// as slow. Upstream-backed search calls sit well below it when healthy.
const DefaultSlowRequestThreshold = 3 * time.Second

// RequestSample is one observed request.
type RequestSample struct {
	Endpoint   string
	Method     string
	Duration   time.Duration
	StatusCode int
	Timestamp  time.Time
}

// EndpointStats contains aggregated latency statistics for an endpoint.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"requestCount"`
	ErrorCount   int64   `json:"errorCount"`
	AvgMS        float64 `json:"avgMs"`
	P50MS        int64   `json:"p50Ms"`
	P95MS        int64   `json:"p95Ms"`
	P99MS        int64   `json:"p99Ms"`
	MaxMS        int64   `json:"maxMs"`
}

// PerformanceMonitor keeps a sliding window of recent request samples.
type PerformanceMonitor struct {
	mu            sync.RWMutex
	samples       []RequestSample
	maxSamples    int
	slowThreshold time.Duration
}

// NewPerformanceMonitor creates a monitor retaining at most maxSamples.
func NewPerformanceMonitor(maxSamples int, slowThreshold time.Duration) *PerformanceMonitor {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowRequestThreshold
	}
	return &PerformanceMonitor{
		samples:       make([]RequestSample, 0, maxSamples),
		maxSamples:    maxSamples,
		slowThreshold: slowThreshold,
	}
}

// Record adds a sample, evicting the oldest once the window is full.
func (pm *PerformanceMonitor) Record(sample RequestSample) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.samples = append(pm.samples, sample)
	if len(pm.samples) > pm.maxSamples {
		pm.samples = pm.samples[len(pm.samples)-pm.maxSamples:]
	}
}

// Stats aggregates the window per endpoint, busiest first.
func (pm *PerformanceMonitor) Stats() []EndpointStats {
	pm.mu.RLock()
	grouped := make(map[string][]RequestSample)
	for _, s := range pm.samples {
		key := s.Method + " " + s.Endpoint
		grouped[key] = append(grouped[key], s)
	}
	pm.mu.RUnlock()

	stats := make([]EndpointStats, 0, len(grouped))
	for endpoint, samples := range grouped {
		durations := make([]int64, len(samples))
		var sum, errs int64
		for i, s := range samples {
			durations[i] = s.Duration.Milliseconds()
			sum += durations[i]
			if s.StatusCode >= http.StatusInternalServerError {
				errs++
			}
		}
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: int64(len(durations)),
			ErrorCount:   errs,
			AvgMS:        float64(sum) / float64(len(durations)),
			P50MS:        percentile(durations, 0.50),
			P95MS:        percentile(durations, 0.95),
			P99MS:        percentile(durations, 0.99),
			MaxMS:        durations[len(durations)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

// Len returns the number of samples in the window.
func (pm *PerformanceMonitor) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.samples)
}

// Middleware records every request and logs the slow ones.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := newStatusRecorder(w)

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		endpoint := RoutePattern(r)
		pm.Record(RequestSample{
			Endpoint:   endpoint,
			Method:     r.Method,
			Duration:   duration,
			StatusCode: wrapper.statusCode,
			Timestamp:  start,
		})

		if duration > pm.slowThreshold {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("endpoint", endpoint).
				Int64("duration_ms", duration.Milliseconds()).
				Msg("Slow request detected")
		}
	})
}

// percentile picks the nearest-rank value from a sorted slice.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
