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

func newTestClassifier(t *testing.T, cat *catalog.Catalog) *Classifier {
	t.Helper()
	cfg := DefaultConfig()
	tok := NewTokenizer(cat)
	return NewClassifier(cfg.Classifier, cat, tok, NewSimilarity(cfg.Similarity, cat))
}

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t, catalog.Default())

	tests := []struct {
		name string
		text string
		want string
	}{
		{"finance", "주식 투자 배당 수익 정리", "finance"},
		{"health by synonym", "홈트 루틴 피트니스 헬스", "health"},
		{"cooking", "간단한 요리 레시피 모음", "cooking"},
		{"tech latin keyword", "AI 인공지능 개발 입문", "tech"},
		{"nothing matches", "날씨 산책", "general"},
		{"empty", "", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := c.Classify(tt.text)
			if got.Category != tt.want {
				t.Errorf("Classify(%q) = %s, want %s (scores %v)", tt.text, got.Category, tt.want, got.Scores)
			}
			if got.Confidence < 0 {
				t.Errorf("Expected non-negative confidence, got %f", got.Confidence)
			}
			if len(got.Scores) != 4 {
				t.Errorf("Expected a score for each of 4 categories, got %d", len(got.Scores))
			}
		})
	}
}

func TestClassifier_Confidence(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t, catalog.Default())

	// Each keyword scores 2 for the match plus 1 for its self-similarity.
	got := c.Classify("주식 투자")
	if math.Abs(got.Confidence-3) > epsilon {
		t.Errorf("Expected confidence 3, got %f", got.Confidence)
	}
	if math.Abs(got.Scores["finance"]-6) > epsilon {
		t.Errorf("Expected finance score 6, got %f", got.Scores["finance"])
	}

	fallback := c.Classify("날씨 산책")
	if fallback.Confidence != 0 {
		t.Errorf("Expected zero confidence for fallback, got %f", fallback.Confidence)
	}
}

func TestClassifier_TieGoesToFirstCategory(t *testing.T) {
	t.Parallel()
	cat, err := catalog.Parse([]byte(`
categories:
  - name: alpha
    keywords: [공통]
  - name: beta
    keywords: [공통]
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	c := newTestClassifier(t, cat)

	for i := 0; i < 20; i++ {
		got := c.Classify("공통 주제")
		if got.Category != "alpha" {
			t.Fatalf("Expected first configured category alpha, got %s", got.Category)
		}
		if got.Scores["alpha"] != got.Scores["beta"] {
			t.Fatalf("Expected tied scores, got %v", got.Scores)
		}
	}
}

func TestClassifier_NoCategories(t *testing.T) {
	t.Parallel()
	cat, err := catalog.Parse([]byte("fallback_category: misc\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	c := newTestClassifier(t, cat)

	got := c.Classify("주식 투자")
	if got.Category != "misc" || got.Confidence != 0 {
		t.Errorf("Expected misc with zero confidence, got %s/%f", got.Category, got.Confidence)
	}
}
