// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/keyscope/internal/logging"
)

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window

	minJWTSecretLength = 32
)

// placeholderPatterns are values copied from examples that must never reach production.
var placeholderPatterns = []string{"CHANGEME", "REPLACE", "YOUR_", "EXAMPLE", "PLACEHOLDER", "SECRET_HERE"}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateYouTube,
		c.validateQuota,
		c.validateLLM,
		c.validateStorage,
		c.validateScoring,
		c.validateSecurity,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if err := c.YouTube.Validate(); err != nil {
		return fmt.Errorf("youtube: %w", err)
	}
	return validateHTTPURL(c.YouTube.BaseURL, "YOUTUBE_BASE_URL")
}

func (c *Config) validateQuota() error {
	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("QUOTA_DAILY_LIMIT must be positive, got %d", c.Quota.DailyLimit)
	}
	if _, err := time.LoadLocation(c.Quota.TimeZone); err != nil {
		return fmt.Errorf("QUOTA_TIMEZONE %q: %w", c.Quota.TimeZone, err)
	}
	if c.Quota.ResetEnabled {
		if _, err := cron.ParseStandard(c.Quota.ResetSchedule); err != nil {
			return fmt.Errorf("QUOTA_RESET_SCHEDULE %q: %w", c.Quota.ResetSchedule, err)
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if c.LLM.APIKey == "" {
		return nil
	}
	return validateHTTPURL(c.LLM.BaseURL, "LLM_BASE_URL")
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if !c.Storage.Badger.InMemory && strings.TrimSpace(c.Storage.Badger.Path) == "" {
		return fmt.Errorf("STORAGE_PATH is required when storage is enabled")
	}
	if c.Storage.Badger.GCRatio <= 0 || c.Storage.Badger.GCRatio >= 1 {
		return fmt.Errorf("storage.badger.gc_ratio must be in (0, 1), got %f", c.Storage.Badger.GCRatio)
	}
	if c.Storage.GCInterval <= 0 {
		return fmt.Errorf("STORAGE_GC_INTERVAL must be positive, got %v", c.Storage.GCInterval)
	}
	return nil
}

func (c *Config) validateScoring() error {
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if c.Security.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.Security.MaxBodyBytes)
	}
	if c.Security.AdminAuthEnabled {
		if err := c.validateJWTSecret(); err != nil {
			return err
		}
	}
	return c.validateCORS()
}

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateJWTSecret validates the JWT secret configuration
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_AUTH_ENABLED is true")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for security", minJWTSecretLength)
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateCORS rejects wildcard origins in production when admin routes
// are authenticated.
func (c *Config) validateCORS() error {
	if c.Security.AdminAuthEnabled && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with admin authentication enabled; " +
			"set specific origins or use ENVIRONMENT=development")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// IsProduction reports whether ENVIRONMENT names a production deployment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// validateHTTPURL checks for an http(s) URL with a host and no query.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
