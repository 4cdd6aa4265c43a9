// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}

	sum := cfg.Weights.Frequency + cfg.Weights.Popularity + cfg.Weights.TFIDF + cfg.Weights.Sentiment +
		cfg.Weights.Diversity + cfg.Weights.Trend + cfg.Weights.Seasonal + cfg.Weights.Semantic
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("Expected weights summing to 1, got %f", sum)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero shortlist", func(c *Config) { c.ShortlistSize = 0 }},
		{"result above shortlist", func(c *Config) { c.ResultSize = c.ShortlistSize + 1 }},
		{"min frequency zero", func(c *Config) { c.MinFrequency = 0 }},
		{"zero divisor", func(c *Config) { c.PopularityDivisor = 0 }},
		{"edit scale above one", func(c *Config) { c.Similarity.EditScale = 1.5 }},
		{"empty similarity cache", func(c *Config) { c.Similarity.CacheSize = 0 }},
		{"inverted peak window", func(c *Config) { c.Trend.PeakStartHour, c.Trend.PeakEndHour = 22, 20 }},
		{"zero trend ttl", func(c *Config) { c.Trend.CacheTTL = 0 }},
		{"negative factor", func(c *Config) { c.Personalizer.Factor = -1 }},
		{"unknown timezone", func(c *Config) { c.TimeZone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Weights.Frequency = 0.9
	clone.Trend.CacheTTL = time.Minute

	if cfg.Weights.Frequency == 0.9 || cfg.Trend.CacheTTL == time.Minute {
		t.Error("Expected clone to be independent of the original")
	}
}
