// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto when
// the package is loaded. Label values for credentials are always the masked
// form; raw credentials never reach a metric.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keyscope_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "keyscope_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Upstream Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_upstream_requests_total",
			Help: "Total upstream calls by outcome (success, quota_exceeded, transient, other)",
		},
		[]string{"service", "endpoint", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keyscope_upstream_request_duration_seconds",
			Help:    "Upstream call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service", "endpoint"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_upstream_retries_total",
			Help: "Upstream retries after rotating to another credential",
		},
		[]string{"service", "reason"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "keyscope_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "keyscope_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Quota Metrics
	QuotaUnitsUsed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "keyscope_quota_units_used",
			Help: "Quota units used today per credential",
		},
		[]string{"credential"},
	)

	QuotaExhaustions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_quota_exhaustions_total",
			Help: "Credentials flagged exhausted, by reason (ceiling, upstream)",
		},
		[]string{"reason"},
	)

	QuotaAvailableCredentials = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "keyscope_quota_available_credentials",
			Help: "Credentials currently eligible for selection",
		},
	)

	QuotaResets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_quota_resets_total",
			Help: "Daily quota resets, by trigger (schedule, admin)",
		},
		[]string{"trigger"},
	)

	// Scoring Metrics
	ScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "keyscope_scoring_duration_seconds",
			Help:    "Time spent scoring one document batch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	ScoringBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "keyscope_scoring_batch_documents",
			Help:    "Documents per scoring batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "keyscope_recommendations_returned",
			Help:    "Recommendations returned per scoring batch",
			Buckets: []float64{0, 1, 3, 5, 10, 15},
		},
	)

	PersonalizationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keyscope_personalization_failures_total",
			Help: "Scoring passes that fell back to the unpersonalized ranking",
		},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "keyscope_cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	CacheHitRatio = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "keyscope_cache_hit_ratio",
			Help: "Cache hit rate in percent since start",
		},
		[]string{"cache"},
	)

	// Text Generation Metrics
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_llm_requests_total",
			Help: "Text-generation calls by outcome",
		},
		[]string{"outcome"},
	)

	TopicFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_topic_fallbacks_total",
			Help: "Topic generations that used a fallback path, by reason",
		},
		[]string{"reason"}, // "unparseable", "llm_error", "disabled"
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_events_published_total",
			Help: "Events published to the in-process bus",
		},
		[]string{"topic"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_events_processed_total",
			Help: "Events consumed from the in-process bus",
		},
		[]string{"topic", "result"},
	)
)

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstreamCall records one upstream attempt.
func RecordUpstreamCall(service, endpoint, outcome string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(service, endpoint, outcome).Inc()
	UpstreamDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

// RecordScoring records one scoring pass.
func RecordScoring(duration time.Duration, batchSize, returned int) {
	ScoringDuration.Observe(duration.Seconds())
	ScoringBatchSize.Observe(float64(batchSize))
	RecommendationsReturned.Observe(float64(returned))
}

// UpdateCache publishes the size and hit rate of a named cache.
func UpdateCache(name string, entries int, hitRate float64) {
	CacheEntries.WithLabelValues(name).Set(float64(entries))
	CacheHitRatio.WithLabelValues(name).Set(hitRate)
}
