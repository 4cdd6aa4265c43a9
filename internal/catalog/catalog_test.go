// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Loads(t *testing.T) {
	t.Parallel()

	c := Default()

	names := c.CategoryNames()
	want := []string{"finance", "health", "cooking", "tech"}
	if len(names) != len(want) {
		t.Fatalf("Expected %d categories, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected category %d to be %s, got %s", i, want[i], names[i])
		}
	}
	if c.FallbackCategory() != "general" {
		t.Errorf("Expected fallback 'general', got %q", c.FallbackCategory())
	}
	if len(c.TrendIndicators()) != 18 {
		t.Errorf("Expected 18 trend indicators, got %d", len(c.TrendIndicators()))
	}
}

func TestCatalog_StopWords(t *testing.T) {
	t.Parallel()

	c := Default()
	for _, w := range []string{"구독", "채널", "channel", "Subscribe", "그리고", "방법"} {
		if !c.IsStopWord(w) {
			t.Errorf("Expected %q to be a stop word", w)
		}
	}
	if c.IsStopWord("다이어트") {
		t.Error("Did not expect 다이어트 to be a stop word")
	}
}

func TestCatalog_SeasonalBoost(t *testing.T) {
	t.Parallel()

	c := Default()
	tests := []struct {
		month int
		term  string
		want  float64
	}{
		{6, "다이어트", 2.0},
		{12, "연말정산", 1.8},
		{1, "신년계획", 1.9},
		{6, "투자", 1.0},
		{13, "다이어트", 1.0},
	}
	for _, tt := range tests {
		if got := c.SeasonalBoost(tt.month, tt.term); got != tt.want {
			t.Errorf("SeasonalBoost(%d, %s) = %v, want %v", tt.month, tt.term, got, tt.want)
		}
	}
}

func TestCatalog_NormalizesCase(t *testing.T) {
	t.Parallel()

	c := Default()
	var tech Category
	for _, cat := range c.Categories() {
		if cat.Name == "tech" {
			tech = cat
		}
	}
	if len(tech.Keywords) == 0 || tech.Keywords[0] != "ai" {
		t.Errorf("Expected lower-cased keyword 'ai', got %v", tech.Keywords)
	}
	if _, ok := tech.Synonyms["ai"]; !ok {
		t.Error("Expected synonym head to be lower-cased")
	}
}

func TestCatalog_CategoriesReturnsCopy(t *testing.T) {
	t.Parallel()

	c := Default()
	cats := c.Categories()
	cats[0].Keywords[0] = "mutated"
	cats[0].Synonyms["투자"][0] = "mutated"

	again := c.Categories()
	if again[0].Keywords[0] == "mutated" || again[0].Synonyms["투자"][0] == "mutated" {
		t.Error("Expected catalog to be immune to caller mutation")
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"malformed yaml", "categories: [unclosed"},
		{"missing name", "categories:\n  - keywords: [a]\n"},
		{"duplicate name", "categories:\n  - {name: a, keywords: [x]}\n  - {name: a, keywords: [y]}\n"},
		{"no keywords", "categories:\n  - {name: a}\n"},
		{"bad month", "seasonal:\n  13: {x: 1.2}\n"},
		{"non-positive multiplier", "seasonal:\n  3: {x: 0}\n"},
		{"sentiment out of range", "sentiment:\n  great: 9\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("Expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestParse_DefaultsFallback(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte("categories:\n  - {name: games, keywords: [게임]}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.FallbackCategory() != DefaultFallbackCategory {
		t.Errorf("Expected fallback %q, got %q", DefaultFallbackCategory, c.FallbackCategory())
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	c, err := Load("")
	if err != nil || c == nil {
		t.Fatalf("Expected embedded default, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := "fallback_category: misc\ncategories:\n  - {name: travel, keywords: [여행, 캠핑]}\nstop_words: [브이로그]\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.FallbackCategory() != "misc" || !c.IsStopWord("브이로그") {
		t.Error("Expected catalog file contents to be applied")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
