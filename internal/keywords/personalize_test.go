// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

type staticInterests struct {
	profiles map[string]map[string]int
	err      error
}

func (s staticInterests) Interests(_ context.Context, userID string) (map[string]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles[userID], nil
}

func sampleRecommendations() []Recommendation {
	return []Recommendation{
		{Keyword: "주식", RelevanceScore: 1.0},
		{Keyword: "배당", RelevanceScore: 0.8},
		{Keyword: "코인", RelevanceScore: 0.8},
	}
}

func TestBlender_Unchanged(t *testing.T) {
	t.Parallel()
	source := staticInterests{profiles: map[string]map[string]int{"known": {"배당": 5}}}

	tests := []struct {
		name   string
		source InterestSource
		userID string
	}{
		{"no user", source, ""},
		{"no source", nil, "known"},
		{"unknown user", source, "stranger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := NewBlender(PersonalizerConfig{Factor: 0.1}, tt.source)
			got, err := b.Blend(context.Background(), tt.userID, sampleRecommendations())
			if err != nil {
				t.Fatalf("Blend() error = %v", err)
			}
			if !reflect.DeepEqual(got, sampleRecommendations()) {
				t.Errorf("Expected list unchanged, got %+v", got)
			}
		})
	}
}

func TestBlender_AddsBonusAndResorts(t *testing.T) {
	t.Parallel()
	source := staticInterests{profiles: map[string]map[string]int{"u1": {"코인": 5}}}
	b := NewBlender(PersonalizerConfig{Factor: 0.1}, source)

	input := sampleRecommendations()
	got, err := b.Blend(context.Background(), "u1", input)
	if err != nil {
		t.Fatalf("Blend() error = %v", err)
	}

	if got[0].Keyword != "코인" {
		t.Fatalf("Expected 코인 first, got %s", got[0].Keyword)
	}
	if math.Abs(got[0].PersonalizedBonus-0.5) > epsilon {
		t.Errorf("Expected bonus 0.5, got %f", got[0].PersonalizedBonus)
	}
	if math.Abs(got[0].RelevanceScore-1.3) > epsilon {
		t.Errorf("Expected relevance 1.3, got %f", got[0].RelevanceScore)
	}
	if got[1].Keyword != "주식" || got[2].Keyword != "배당" {
		t.Errorf("Expected remaining order 주식, 배당; got %s, %s", got[1].Keyword, got[2].Keyword)
	}
	if input[2].RelevanceScore != 0.8 {
		t.Error("Expected input slice not to be mutated")
	}
}

func TestBlender_SourceError(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("store offline")
	b := NewBlender(PersonalizerConfig{Factor: 0.1}, staticInterests{err: wantErr})

	got, err := b.Blend(context.Background(), "u1", sampleRecommendations())
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected wrapped source error, got %v", err)
	}
	if !reflect.DeepEqual(got, sampleRecommendations()) {
		t.Error("Expected original list returned alongside the error")
	}
}
