// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/keywords/analyze", "200"))

	RecordAPIRequest("POST", "/api/v1/keywords/analyze", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/keywords/analyze", "200"))
	if after-before != 1 {
		t.Errorf("Expected counter to increase by 1, got %f", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("Expected gauge %f, got %f", before+1, got)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("Expected gauge back at %f, got %f", before, got)
	}
}

func TestRecordUpstreamCall(t *testing.T) {
	counter := UpstreamRequests.WithLabelValues("youtube", "search", "quota_exceeded")
	before := testutil.ToFloat64(counter)

	RecordUpstreamCall("youtube", "search", "quota_exceeded", 120*time.Millisecond)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected %f, got %f", before+1, got)
	}
}

func TestRecordScoring(t *testing.T) {
	RecordScoring(3*time.Millisecond, 25, 10)

	if n := testutil.CollectAndCount(ScoringDuration); n != 1 {
		t.Errorf("Expected one scoring histogram series, got %d", n)
	}
}

func TestUpdateCache(t *testing.T) {
	UpdateCache("similarity", 42, 87.5)

	if got := testutil.ToFloat64(CacheEntries.WithLabelValues("similarity")); got != 42 {
		t.Errorf("Expected 42 entries, got %f", got)
	}
	if got := testutil.ToFloat64(CacheHitRatio.WithLabelValues("similarity")); got != 87.5 {
		t.Errorf("Expected hit ratio 87.5, got %f", got)
	}
}
