// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/tomtom215/keyscope/internal/cache"
	"github.com/tomtom215/keyscope/internal/catalog"
)

// Similarity estimates how related two terms are, in [0, 1].
//
// The score is the larger of two signals, never their sum: normalized edit
// similarity scaled down to a weak floor, and a fixed bonus when the terms
// form a keyword/synonym pair in any catalog category. Identical terms score
// 1. Results are memoized per unordered pair in a bounded LRU.
type Similarity struct {
	editScale    float64
	synonymBonus float64
	synonyms     map[cache.PairKey]struct{}
	memo         cache.Cache[cache.PairKey, float64]
}

// NewSimilarity builds the estimator from the catalog's synonym tables.
func NewSimilarity(cfg SimilarityConfig, cat *catalog.Catalog) *Similarity {
	s := &Similarity{
		editScale:    cfg.EditScale,
		synonymBonus: cfg.SynonymBonus,
		synonyms:     make(map[cache.PairKey]struct{}),
		memo:         cache.NewLRU[cache.PairKey, float64](cfg.CacheSize, 0),
	}
	for _, cat := range cat.Categories() {
		for head, list := range cat.Synonyms {
			for _, syn := range list {
				if syn != head {
					s.synonyms[cache.NewPairKey(head, syn)] = struct{}{}
				}
			}
		}
	}
	return s
}

// Score returns the similarity of a and b. It is symmetric.
func (s *Similarity) Score(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}

	key := cache.NewPairKey(a, b)
	if v, ok := s.memo.Get(key); ok {
		return v
	}

	score := s.compute(key)
	s.memo.Add(key, score)
	return score
}

// Synonyms reports whether a and b are a catalog keyword/synonym pair.
func (s *Similarity) Synonyms(a, b string) bool {
	_, ok := s.synonyms[cache.NewPairKey(strings.ToLower(a), strings.ToLower(b))]
	return ok
}

// CacheStats exposes the memo table counters.
func (s *Similarity) CacheStats() cache.Stats {
	return s.memo.Stats()
}

func (s *Similarity) compute(key cache.PairKey) float64 {
	score := EditSimilarity(key.Low, key.High) * s.editScale
	if _, ok := s.synonyms[key]; ok && s.synonymBonus > score {
		score = s.synonymBonus
	}
	return score
}

// EditSimilarity is 1 - levenshtein(a, b) / max(len(a), len(b)), measured
// in runes. Two empty strings are identical.
func EditSimilarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}
