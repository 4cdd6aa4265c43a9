// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/events"
	"github.com/tomtom215/keyscope/internal/keywords"
	"github.com/tomtom215/keyscope/internal/llm"
	"github.com/tomtom215/keyscope/internal/middleware"
	"github.com/tomtom215/keyscope/internal/quota"
	"github.com/tomtom215/keyscope/internal/youtube"
)

// Searcher retrieves and enriches videos.
type Searcher interface {
	Search(ctx context.Context, req *youtube.SearchRequest) (*youtube.SearchResult, error)
}

// KeywordScorer runs the keyword pipeline.
type KeywordScorer interface {
	Score(ctx context.Context, docs []keywords.Document, originalKeyword, userID string) (*keywords.Result, error)
	Classify(text string) keywords.Classification
	Trending(seed, region string) []keywords.TrendingKeyword
	Stats() keywords.Stats
}

// TopicProposer proposes video topics.
type TopicProposer interface {
	Topics(ctx context.Context, keyword string, docs []keywords.Document, opts llm.TopicOptions) llm.TopicSet
}

// CredentialManager is the slice of the quota manager the API needs.
type CredentialManager interface {
	Register(raw string) (bool, error)
	Status() []quota.CredentialStatus
	HasAvailable() bool
	Reset() int
	Len() int
}

// EventPublisher publishes search events.
type EventPublisher interface {
	PublishSearchCompleted(ctx context.Context, ev events.SearchCompleted) error
}

// Dependencies are the collaborators behind the handlers. Events and
// Performance are optional.
type Dependencies struct {
	Search      Searcher
	Scorer      KeywordScorer
	Topics      TopicProposer
	Credentials CredentialManager
	Events      EventPublisher
	Performance *middleware.PerformanceMonitor
	Version     string
}

// Handler serves the API endpoints.
type Handler struct {
	search      Searcher
	scorer      KeywordScorer
	topics      TopicProposer
	credentials CredentialManager
	events      EventPublisher
	perf        *middleware.PerformanceMonitor
	version     string
	startTime   time.Time
	logger      zerolog.Logger
}

// NewHandler creates a handler over deps.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(deps Dependencies, logger zerolog.Logger) *Handler {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		search:      deps.Search,
		scorer:      deps.Scorer,
		topics:      deps.Topics,
		credentials: deps.Credentials,
		events:      deps.Events,
		perf:        deps.Performance,
		version:     version,
		startTime:   time.Now(),
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

// elapsedMillis is the processingTime reported by compute endpoints.
func elapsedMillis(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
