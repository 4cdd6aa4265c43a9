// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/keyscope/internal/events"
	"github.com/tomtom215/keyscope/internal/keywords"
	"github.com/tomtom215/keyscope/internal/llm"
	"github.com/tomtom215/keyscope/internal/quota"
	"github.com/tomtom215/keyscope/internal/storage"
	"github.com/tomtom215/keyscope/internal/youtube"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/keyscope/config.yaml",
	"/etc/keyscope/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultResetSchedule resets credential exhaustion at local midnight.
const DefaultResetSchedule = "0 0 * * *"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		YouTube: youtube.DefaultConfig(),
		Quota: QuotaConfig{
			DailyLimit:    quota.DefaultDailyLimit,
			TimeZone:      "Asia/Seoul",
			Credentials:   []string{},
			ResetEnabled:  true,
			ResetSchedule: DefaultResetSchedule,
		},
		LLM: llm.DefaultConfig(),
		Storage: StorageConfig{
			Enabled:    true,
			Badger:     storage.DefaultConfig(),
			GCInterval: 10 * time.Minute,
		},
		Catalog: CatalogConfig{Path: ""}, // Empty = embedded default tables
		Scoring: *keywords.DefaultConfig(),
		Events:  events.DefaultBusConfig(),
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			AdminAuthEnabled:  false,
			JWTSecret:         "",
			MaxBodyBytes:      5 << 20, // 5MB; analyze batches carry full descriptions
		},
	}
}

// Load loads configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile loads configuration using the YAML file at path instead of the
// search list. Environment variables still apply.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return loadFrom(path)
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are keys that accept comma-separated strings.
var sliceConfigPaths = []string{
	"quota.credentials",
	"security.cors_origins",
}

// processSliceFields splits comma-separated string values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf keys.
var envMappings = map[string]string{
	"http_host":          "server.host",
	"http_port":          "server.port",
	"http_read_timeout":  "server.read_timeout",
	"http_write_timeout": "server.write_timeout",
	"shutdown_timeout":   "server.shutdown_timeout",
	"environment":        "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"youtube_base_url":            "youtube.base_url",
	"youtube_timeout":             "youtube.timeout",
	"youtube_units_per_call":      "youtube.units_per_call",
	"youtube_retry_budget":        "youtube.retry_budget",
	"youtube_region":              "youtube.region",
	"youtube_max_results":         "youtube.max_results",
	"youtube_requests_per_second": "youtube.requests_per_second",
	"youtube_burst":               "youtube.burst",

	"youtube_api_keys":     "quota.credentials",
	"quota_daily_limit":    "quota.daily_limit",
	"quota_timezone":       "quota.timezone",
	"quota_reset_enabled":  "quota.reset_enabled",
	"quota_reset_schedule": "quota.reset_schedule",

	"llm_base_url":   "llm.base_url",
	"openai_api_key": "llm.api_key",
	"llm_model":      "llm.model",
	"llm_max_tokens": "llm.max_tokens",
	"llm_timeout":    "llm.timeout",

	"storage_enabled":     "storage.enabled",
	"storage_path":        "storage.badger.path",
	"storage_in_memory":   "storage.badger.in_memory",
	"storage_gc_interval": "storage.gc_interval",

	"catalog_path": "catalog.path",

	"scoring_timezone":       "scoring.timezone",
	"scoring_result_size":    "scoring.result_size",
	"scoring_shortlist_size": "scoring.shortlist_size",

	"event_buffer": "events.output_buffer",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"admin_auth_enabled":  "security.admin_auth_enabled",
	"jwt_secret":          "security.jwt_secret",
	"max_body_bytes":      "security.max_body_bytes",
}

// envTransformFunc maps allow-listed environment variables to config keys.
// Unmapped keys return "" and are skipped, so unrelated variables never
// pollute the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
