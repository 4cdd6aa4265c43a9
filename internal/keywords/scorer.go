// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/catalog"
	"github.com/tomtom215/keyscope/internal/metrics"
)

// Scorer runs the full keyword pipeline over a document batch.
type Scorer struct {
	cfg        *Config
	logger     zerolog.Logger
	tokenizer  *Tokenizer
	similarity *Similarity
	classifier *Classifier
	trend      *TrendScorer
	sentiment  *Sentiment
	blender    *Blender
	now        func() time.Time

	batches   atomic.Int64
	documents atomic.Int64
}

// Stats summarizes scorer activity since start.
type Stats struct {
	Batches         int64   `json:"batches"`
	Documents       int64   `json:"documents"`
	SimilarityCache int     `json:"similarityCacheSize"`
	SimilarityHits  float64 `json:"similarityHitRate"`
	TrendCache      int     `json:"trendCacheSize"`
}

// NewScorer wires the pipeline stages from cfg and cat. interests may be nil,
// which disables personalization.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewScorer(cfg *Config, cat *catalog.Catalog, interests InterestSource, logger zerolog.Logger) (*Scorer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	tokenizer := NewTokenizer(cat)
	similarity := NewSimilarity(cfg.Similarity, cat)
	return &Scorer{
		cfg:        cfg.Clone(),
		logger:     logger.With().Str("component", "scorer").Logger(),
		tokenizer:  tokenizer,
		similarity: similarity,
		classifier: NewClassifier(cfg.Classifier, cat, tokenizer, similarity),
		trend:      NewTrendScorer(cfg.Trend, cat, cfg.location()),
		sentiment:  NewSentiment(cat),
		blender:    NewBlender(cfg.Personalizer, interests),
		now:        time.Now,
	}, nil
}

// WithClock replaces the time source used for peak hours and seasons.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Score ranks the candidate terms of docs. originalKeyword is excluded from
// the output and anchors the semantic signal; userID, when set, enables
// personalization. An empty batch yields an empty result, not an error.
func (s *Scorer) Score(ctx context.Context, docs []Document, originalKeyword, userID string) (*Result, error) {
	if len(docs) == 0 {
		return &Result{Recommendations: []Recommendation{}, TotalAnalyzed: 0}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	at := s.now()
	original := strings.ToLower(strings.TrimSpace(originalKeyword))

	candidates, docCounts := s.collect(docs, original)
	weights := NewTermWeights(docCounts)

	titles := make([]string, len(docs))
	for i := range docs {
		titles[i] = docs[i].Title
	}
	classification := s.classifier.Classify(strings.Join(titles, " "))

	w := s.cfg.Weights
	recs := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if c.frequency < s.cfg.MinFrequency {
			continue
		}

		contexts := make([]string, len(c.contexts))
		for i, cx := range c.contexts {
			contexts[i] = cx.Text
		}
		semantic := 0.0
		if original != "" {
			semantic = s.similarity.Score(c.term, original)
		}
		tfidf := weights.Score(c.term)

		rec := Recommendation{
			Keyword:    c.term,
			Frequency:  c.frequency,
			AvgWeight:  c.avgWeight(),
			TrendScore: w.Trend * s.trend.Score(contexts, at),
			Sentiment:  c.avgSentiment,
			Diversity:  w.Diversity * float64(len(c.docs)) / float64(len(docs)),
			Seasonal:   w.Seasonal * s.trend.Seasonal(c.term, at),
			Semantic:   w.Semantic * semantic,
			TFIDF:      tfidf,
			Category:   classification.Category,
			Contexts:   c.contexts,
		}
		rec.RelevanceScore = w.Frequency*math.Log(float64(c.frequency)+1) +
			w.Popularity*rec.AvgWeight +
			w.TFIDF*tfidf +
			w.Sentiment*math.Max(c.avgSentiment, 0) +
			rec.Diversity + rec.TrendScore + rec.Seasonal + rec.Semantic
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].RelevanceScore > recs[j].RelevanceScore
	})
	if len(recs) > s.cfg.ShortlistSize {
		recs = recs[:s.cfg.ShortlistSize]
	}

	blended, err := s.blender.Blend(ctx, userID, recs)
	if err != nil {
		metrics.PersonalizationFailures.Inc()
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Personalization failed, keeping base ranking")
	} else {
		recs = blended
	}
	if len(recs) > s.cfg.ResultSize {
		recs = recs[:s.cfg.ResultSize]
	}

	s.batches.Add(1)
	s.documents.Add(int64(len(docs)))
	metrics.RecordScoring(time.Since(start), len(docs), len(recs))
	s.publishCacheMetrics()

	s.logger.Debug().
		Int("documents", len(docs)).
		Int("candidates", len(candidates)).
		Int("returned", len(recs)).
		Str("category", classification.Category).
		Dur("duration", time.Since(start)).
		Msg("Scored keyword batch")

	return &Result{
		Recommendations: recs,
		CategoryInfo:    &classification,
		TotalAnalyzed:   len(docs),
	}, nil
}

// collect scans the batch once, building candidates in first-appearance order
// and the per-document term counts for TF-IDF.
func (s *Scorer) collect(docs []Document, original string) ([]*candidate, []map[string]int) {
	byTerm := make(map[string]*candidate)
	var ordered []*candidate
	docCounts := make([]map[string]int, len(docs))

	for i := range docs {
		doc := &docs[i]
		text := doc.Text()
		docCounts[i] = s.tokenizer.Counts(text)

		weight := math.Log(float64(max(doc.ViewCount, 0))+1) / s.cfg.PopularityDivisor
		sentiment := s.sentiment.Analyze(text)
		excerpt := Context{
			Text:        truncateRunes(text, s.cfg.ContextRunes),
			PublishedAt: doc.PublishedAt,
			Views:       doc.ViewCount,
		}
		docID := doc.ID
		if docID == "" {
			docID = fmt.Sprintf("#%d", i)
		}

		for _, term := range s.tokenizer.Tokenize(text) {
			if term == original {
				continue
			}
			c, ok := byTerm[term]
			if !ok {
				c = &candidate{term: term, docs: make(map[string]struct{})}
				byTerm[term] = c
				ordered = append(ordered, c)
			}
			c.observe(docID, weight, sentiment, excerpt, s.cfg.MaxContexts)
		}
	}
	return ordered, docCounts
}

// Classify assigns a category to free text.
func (s *Scorer) Classify(text string) Classification {
	return s.classifier.Classify(text)
}

// Trending expands seed into trending query variants.
func (s *Scorer) Trending(seed, region string) []TrendingKeyword {
	return s.trend.Trending(seed, region, s.now())
}

// Similarity returns the similarity of two terms.
func (s *Scorer) Similarity(a, b string) float64 {
	return s.similarity.Score(a, b)
}

// Stats returns activity and cache counters.
func (s *Scorer) Stats() Stats {
	sim := s.similarity.CacheStats()
	return Stats{
		Batches:         s.batches.Load(),
		Documents:       s.documents.Load(),
		SimilarityCache: sim.Size,
		SimilarityHits:  sim.HitRate(),
		TrendCache:      s.trend.CacheStats().Size,
	}
}

func (s *Scorer) publishCacheMetrics() {
	sim := s.similarity.CacheStats()
	metrics.UpdateCache("similarity", sim.Size, sim.HitRate())
	trend := s.trend.CacheStats()
	metrics.UpdateCache("trend", trend.Size, trend.HitRate())
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
