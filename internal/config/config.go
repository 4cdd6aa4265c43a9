// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/keyscope/internal/events"
	"github.com/tomtom215/keyscope/internal/keywords"
	"github.com/tomtom215/keyscope/internal/llm"
	"github.com/tomtom215/keyscope/internal/quota"
	"github.com/tomtom215/keyscope/internal/storage"
	"github.com/tomtom215/keyscope/internal/youtube"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig     `koanf:"server"`
	Logging  LoggingConfig    `koanf:"logging"`
	YouTube  youtube.Config   `koanf:"youtube"`
	Quota    QuotaConfig      `koanf:"quota"`
	LLM      llm.Config       `koanf:"llm"`
	Storage  StorageConfig    `koanf:"storage"`
	Catalog  CatalogConfig    `koanf:"catalog"`
	Scoring  keywords.Config  `koanf:"scoring"`
	Events   events.BusConfig `koanf:"events"`
	Security SecurityConfig   `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// QuotaConfig holds credential pool settings.
type QuotaConfig struct {
	DailyLimit int    `koanf:"daily_limit"`
	TimeZone   string `koanf:"timezone"`

	// Credentials seed the pool at startup. More may be registered at runtime.
	Credentials []string `koanf:"credentials"`

	// ResetEnabled runs the scheduled daily reset; when false resets are
	// admin-triggered only.
	ResetEnabled  bool   `koanf:"reset_enabled"`
	ResetSchedule string `koanf:"reset_schedule"`
}

// Manager returns the settings consumed by quota.NewManager.
func (q *QuotaConfig) Manager() quota.Config {
	return quota.Config{DailyLimit: q.DailyLimit, TimeZone: q.TimeZone}
}

// StorageConfig holds badger settings.
type StorageConfig struct {
	// Enabled persists profiles and usage; otherwise both live in memory.
	Enabled bool `koanf:"enabled"`

	Badger storage.Config `koanf:"badger"`

	// GCInterval is how often value log garbage collection runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// CatalogConfig locates the category and lexicon tables.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// SecurityConfig holds HTTP security settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// AdminAuthEnabled requires an HS256 bearer token with role=admin on
	// credential management routes.
	AdminAuthEnabled bool   `koanf:"admin_auth_enabled"`
	JWTSecret        string `koanf:"jwt_secret"`

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// CredentialCount returns how many credentials are configured.
func (c *Config) CredentialCount() int {
	return len(c.Quota.Credentials)
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
