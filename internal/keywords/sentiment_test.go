// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"math"
	"testing"

	"github.com/tomtom215/keyscope/internal/catalog"
)

func TestSentiment_Analyze(t *testing.T) {
	t.Parallel()
	s := NewSentiment(catalog.Default())

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"empty", "", 0},
		{"neutral", "오늘 점심 메뉴", 0},
		{"positive", "좋은 영상 최고", 2},
		{"negative", "최악 손실", -2.5},
		{"stem with ending", "정말 추천합니다", 1},
		{"english case-insensitive", "GREAT video", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := s.Analyze(tt.text); math.Abs(got-tt.want) > epsilon {
				t.Errorf("Analyze(%q) = %f, want %f", tt.text, got, tt.want)
			}
		})
	}
}
