// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

/*
Package middleware provides HTTP instrumentation shared by the API router.

Components:

  - PrometheusMetrics: request counters, latency histograms and the in-flight
    gauge, labelled by chi route pattern so path parameters do not explode
    label cardinality
  - PerformanceMonitor: a sliding window of recent request latencies with
    per-endpoint percentiles, surfaced by the health endpoint
  - AccessLog: one structured log line per request, carrying the request ID

All middleware use the func(http.HandlerFunc) http.HandlerFunc shape, or
func(http.Handler) http.Handler where noted, and are adapted for chi by the
api package.
*/
package middleware
