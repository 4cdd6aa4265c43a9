// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"strings"

	"github.com/tomtom215/keyscope/internal/cache"
	"github.com/tomtom215/keyscope/internal/catalog"
)

// Sentiment scores text against the catalog's valence lexicon.
//
// Lexicon entries are matched as substrings so that Hangul stems still hit
// when a particle or ending is attached ("좋은데", "추천합니다"). The score is
// the summed valence divided by the number of whitespace-separated words.
type Sentiment struct {
	lexicon map[string]int
	matcher *cache.AhoCorasick
}

// NewSentiment builds the analyzer from cat's lexicon.
func NewSentiment(cat *catalog.Catalog) *Sentiment {
	lexicon := cat.Sentiment()
	terms := make([]string, 0, len(lexicon))
	for term := range lexicon {
		terms = append(terms, term)
	}
	return &Sentiment{lexicon: lexicon, matcher: cache.NewAhoCorasick(terms)}
}

// Analyze returns the normalized valence of text; 0 for empty text.
func (s *Sentiment) Analyze(text string) float64 {
	words := len(strings.Fields(Clean(text)))
	if words == 0 {
		return 0
	}

	total := 0
	for _, m := range s.matcher.Search(text) {
		total += s.lexicon[m.Pattern]
	}
	return float64(total) / float64(words)
}
