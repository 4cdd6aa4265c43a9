// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"fmt"
	"time"
	_ "time/tzdata" // the default zone must resolve on hosts without zoneinfo
)

// Config tunes the scoring pipeline.
type Config struct {
	// Weights are the composite score coefficients.
	Weights Weights `koanf:"weights" json:"weights"`

	// ShortlistSize is how many terms survive ranking before personalization.
	ShortlistSize int `koanf:"shortlist_size" json:"shortlist_size"`

	// ResultSize is how many recommendations are returned.
	ResultSize int `koanf:"result_size" json:"result_size"`

	// MinFrequency is the number of documents a term must appear in to rank.
	MinFrequency int `koanf:"min_frequency" json:"min_frequency"`

	// PopularityDivisor scales log(views+1) into the per-document weight.
	PopularityDivisor float64 `koanf:"popularity_divisor" json:"popularity_divisor"`

	// MaxContexts bounds the excerpts kept per term.
	MaxContexts int `koanf:"max_contexts" json:"max_contexts"`

	// ContextRunes truncates each excerpt.
	ContextRunes int `koanf:"context_runes" json:"context_runes"`

	Similarity   SimilarityConfig   `koanf:"similarity" json:"similarity"`
	Classifier   ClassifierConfig   `koanf:"classifier" json:"classifier"`
	Trend        TrendConfig        `koanf:"trend" json:"trend"`
	Personalizer PersonalizerConfig `koanf:"personalization" json:"personalization"`

	// TimeZone locates peak hours and calendar months.
	TimeZone string `koanf:"timezone" json:"timezone"`
}

// Weights are the coefficients of the composite relevance score.
type Weights struct {
	Frequency  float64 `koanf:"frequency" json:"frequency"`
	Popularity float64 `koanf:"popularity" json:"popularity"`
	TFIDF      float64 `koanf:"tfidf" json:"tfidf"`
	Sentiment  float64 `koanf:"sentiment" json:"sentiment"`
	Diversity  float64 `koanf:"diversity" json:"diversity"`
	Trend      float64 `koanf:"trend" json:"trend"`
	Seasonal   float64 `koanf:"seasonal" json:"seasonal"`
	Semantic   float64 `koanf:"semantic" json:"semantic"`
}

// SimilarityConfig tunes the similarity estimator.
type SimilarityConfig struct {
	// EditScale scales normalized edit similarity into a weak floor signal.
	EditScale float64 `koanf:"edit_scale" json:"edit_scale"`

	// SynonymBonus is the score for catalog synonym pairs.
	SynonymBonus float64 `koanf:"synonym_bonus" json:"synonym_bonus"`

	// CacheSize bounds the pairwise memo table.
	CacheSize int `koanf:"cache_size" json:"cache_size"`
}

// ClassifierConfig tunes category scoring.
type ClassifierConfig struct {
	KeywordMatch        float64 `koanf:"keyword_match" json:"keyword_match"`
	SynonymMatch        float64 `koanf:"synonym_match" json:"synonym_match"`
	SimilarityThreshold float64 `koanf:"similarity_threshold" json:"similarity_threshold"`
}

// TrendConfig tunes the trend and pseudo-trend signals.
type TrendConfig struct {
	HitWeight      float64       `koanf:"hit_weight" json:"hit_weight"`
	PeakStartHour  int           `koanf:"peak_start_hour" json:"peak_start_hour"`
	PeakEndHour    int           `koanf:"peak_end_hour" json:"peak_end_hour"`
	PeakMultiplier float64       `koanf:"peak_multiplier" json:"peak_multiplier"`
	CacheSize      int           `koanf:"cache_size" json:"cache_size"`
	CacheTTL       time.Duration `koanf:"cache_ttl" json:"cache_ttl"`
	TrendingLimit  int           `koanf:"trending_limit" json:"trending_limit"`
}

// PersonalizerConfig tunes interest blending.
type PersonalizerConfig struct {
	// Factor multiplies a user's prior interest count.
	Factor float64 `koanf:"factor" json:"factor"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Frequency:  0.25,
			Popularity: 0.20,
			TFIDF:      0.15,
			Sentiment:  0.10,
			Diversity:  0.10,
			Trend:      0.10,
			Seasonal:   0.05,
			Semantic:   0.05,
		},
		ShortlistSize:     15,
		ResultSize:        10,
		MinFrequency:      2,
		PopularityDivisor: 10,
		MaxContexts:       3,
		ContextRunes:      200,
		Similarity: SimilarityConfig{
			EditScale:    0.3,
			SynonymBonus: 0.8,
			CacheSize:    10000,
		},
		Classifier: ClassifierConfig{
			KeywordMatch:        2,
			SynonymMatch:        1.5,
			SimilarityThreshold: 0.6,
		},
		Trend: TrendConfig{
			HitWeight:      0.1,
			PeakStartHour:  19,
			PeakEndHour:    23,
			PeakMultiplier: 1.2,
			CacheSize:      1000,
			CacheTTL:       time.Hour,
			TrendingLimit:  6,
		},
		Personalizer: PersonalizerConfig{
			Factor: 0.1,
		},
		TimeZone: "Asia/Seoul",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ShortlistSize <= 0 {
		return fmt.Errorf("shortlist_size must be positive, got %d", c.ShortlistSize)
	}
	if c.ResultSize <= 0 || c.ResultSize > c.ShortlistSize {
		return fmt.Errorf("result_size must be in [1, shortlist_size], got %d", c.ResultSize)
	}
	if c.MinFrequency < 1 {
		return fmt.Errorf("min_frequency must be at least 1, got %d", c.MinFrequency)
	}
	if c.PopularityDivisor <= 0 {
		return fmt.Errorf("popularity_divisor must be positive, got %f", c.PopularityDivisor)
	}
	if c.MaxContexts < 0 || c.ContextRunes <= 0 {
		return fmt.Errorf("max_contexts must be >= 0 and context_runes positive, got %d/%d", c.MaxContexts, c.ContextRunes)
	}
	if c.Similarity.EditScale < 0 || c.Similarity.EditScale > 1 {
		return fmt.Errorf("similarity.edit_scale must be in [0, 1], got %f", c.Similarity.EditScale)
	}
	if c.Similarity.SynonymBonus < 0 || c.Similarity.SynonymBonus > 1 {
		return fmt.Errorf("similarity.synonym_bonus must be in [0, 1], got %f", c.Similarity.SynonymBonus)
	}
	if c.Similarity.CacheSize <= 0 {
		return fmt.Errorf("similarity.cache_size must be positive, got %d", c.Similarity.CacheSize)
	}
	if c.Classifier.SimilarityThreshold < 0 || c.Classifier.SimilarityThreshold > 1 {
		return fmt.Errorf("classifier.similarity_threshold must be in [0, 1], got %f", c.Classifier.SimilarityThreshold)
	}
	if c.Trend.PeakStartHour < 0 || c.Trend.PeakEndHour > 23 || c.Trend.PeakStartHour > c.Trend.PeakEndHour {
		return fmt.Errorf("trend peak window must satisfy 0 <= start <= end <= 23, got %d-%d", c.Trend.PeakStartHour, c.Trend.PeakEndHour)
	}
	if c.Trend.CacheSize <= 0 || c.Trend.CacheTTL <= 0 {
		return fmt.Errorf("trend cache size and ttl must be positive, got %d/%v", c.Trend.CacheSize, c.Trend.CacheTTL)
	}
	if c.Trend.TrendingLimit <= 0 {
		return fmt.Errorf("trend.trending_limit must be positive, got %d", c.Trend.TrendingLimit)
	}
	if c.Personalizer.Factor < 0 {
		return fmt.Errorf("personalization.factor must be non-negative, got %f", c.Personalizer.Factor)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.TimeZone, err)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// location resolves TimeZone, falling back to UTC.
func (c *Config) location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
