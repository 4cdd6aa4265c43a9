// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package youtube

import (
	"fmt"
	"time"
)

// DefaultBaseURL is the public Data API root.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Config configures the client.
type Config struct {
	BaseURL string `koanf:"base_url" json:"base_url"`

	// Timeout bounds each upstream request.
	Timeout time.Duration `koanf:"timeout" json:"timeout"`

	// UnitsPerCall is reserved against a credential before each request.
	UnitsPerCall int `koanf:"units_per_call" json:"units_per_call"`

	// RetryBudget is the number of re-attempts after the first call.
	RetryBudget int `koanf:"retry_budget" json:"retry_budget"`

	// Region is the default regionCode for searches.
	Region string `koanf:"region" json:"region"`

	// MaxResults is the default page size for searches.
	MaxResults int `koanf:"max_results" json:"max_results"`

	// RequestsPerSecond and Burst shape outbound traffic.
	RequestsPerSecond float64 `koanf:"requests_per_second" json:"requests_per_second"`
	Burst             int     `koanf:"burst" json:"burst"`

	Breaker BreakerConfig `koanf:"circuit_breaker" json:"circuit_breaker"`
}

// BreakerConfig tunes the circuit breaker around upstream calls.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests" json:"max_requests"`
	Interval     time.Duration `koanf:"interval" json:"interval"`
	Timeout      time.Duration `koanf:"timeout" json:"timeout"`
	MinRequests  uint32        `koanf:"min_requests" json:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio" json:"failure_ratio"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Timeout:           10 * time.Second,
		UnitsPerCall:      100,
		RetryBudget:       3,
		Region:            "KR",
		MaxResults:        25,
		RequestsPerSecond: 10,
		Burst:             10,
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.UnitsPerCall < 0 {
		return fmt.Errorf("units_per_call must be non-negative, got %d", c.UnitsPerCall)
	}
	if c.RetryBudget < 0 {
		return fmt.Errorf("retry_budget must be non-negative, got %d", c.RetryBudget)
	}
	if c.MaxResults < 1 || c.MaxResults > 50 {
		return fmt.Errorf("max_results must be in [1, 50], got %d", c.MaxResults)
	}
	if c.RequestsPerSecond <= 0 || c.Burst < 1 {
		return fmt.Errorf("requests_per_second and burst must be positive")
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("circuit_breaker.failure_ratio must be in (0, 1], got %f", c.Breaker.FailureRatio)
	}
	return nil
}
