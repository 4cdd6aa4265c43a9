// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"math"
	"testing"
)

func TestTermWeights(t *testing.T) {
	t.Parallel()

	tw := NewTermWeights([]map[string]int{
		{"a": 2},
		{"a": 1, "b": 1},
		{"c": 1, "zero": 0},
	})

	tests := []struct {
		term  string
		df    int
		idf   float64
		score float64
	}{
		{"a", 2, 1, 1.5},
		{"b", 1, 1 + math.Log(1.5), 1 + math.Log(1.5)},
		{"zero", 0, 1 + math.Log(3), 0},
		{"missing", 0, 1 + math.Log(3), 0},
	}

	for _, tt := range tests {
		if got := tw.DocumentFrequency(tt.term); got != tt.df {
			t.Errorf("DocumentFrequency(%q) = %d, want %d", tt.term, got, tt.df)
		}
		if got := tw.IDF(tt.term); math.Abs(got-tt.idf) > epsilon {
			t.Errorf("IDF(%q) = %f, want %f", tt.term, got, tt.idf)
		}
		if got := tw.Score(tt.term); math.Abs(got-tt.score) > epsilon {
			t.Errorf("Score(%q) = %f, want %f", tt.term, got, tt.score)
		}
	}
}

func TestTermWeights_NeverNegative(t *testing.T) {
	t.Parallel()

	// A term in every document still gets a positive weight.
	tw := NewTermWeights([]map[string]int{{"x": 1}, {"x": 1}, {"x": 1}})
	if got := tw.IDF("x"); got <= 0 {
		t.Errorf("Expected positive IDF for a ubiquitous term, got %f", got)
	}
}

func TestTermWeights_Empty(t *testing.T) {
	t.Parallel()

	tw := NewTermWeights(nil)
	if got := tw.IDF("x"); got != 0 {
		t.Errorf("Expected IDF 0 on empty corpus, got %f", got)
	}
	if got := tw.Score("x"); got != 0 {
		t.Errorf("Expected score 0 on empty corpus, got %f", got)
	}
}
