// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"github.com/tomtom215/keyscope/internal/catalog"
)

// Classifier assigns one catalog category to a corpus.
type Classifier struct {
	cfg        ClassifierConfig
	tokenizer  *Tokenizer
	similarity *Similarity
	categories []catalog.Category
	fallback   string
}

// NewClassifier creates a classifier over cat's categories.
func NewClassifier(cfg ClassifierConfig, cat *catalog.Catalog, tokenizer *Tokenizer, similarity *Similarity) *Classifier {
	return &Classifier{
		cfg:        cfg,
		tokenizer:  tokenizer,
		similarity: similarity,
		categories: cat.Categories(),
		fallback:   cat.FallbackCategory(),
	}
}

// Classify scores every category against the distinct terms of text.
//
// Per term and category: a keyword match adds KeywordMatch, each synonym list
// holding the term adds SynonymMatch, and each keyword whose similarity to the
// term exceeds SimilarityThreshold adds that similarity. The highest total
// wins, the earliest configured category on ties. Confidence is the winning
// total divided by the term count. With no terms, no categories or no score
// above zero the fallback category is returned with zero confidence.
func (c *Classifier) Classify(text string) Classification {
	tokens := c.tokenizer.Tokenize(text)
	result := Classification{
		Category: c.fallback,
		Scores:   make(map[string]float64, len(c.categories)),
	}
	if len(tokens) == 0 || len(c.categories) == 0 {
		for _, cat := range c.categories {
			result.Scores[cat.Name] = 0
		}
		return result
	}

	best := 0.0
	for _, cat := range c.categories {
		score := c.scoreCategory(cat, tokens)
		result.Scores[cat.Name] = score
		if score > best {
			best = score
			result.Category = cat.Name
		}
	}

	if best > 0 {
		result.Confidence = best / float64(len(tokens))
	}
	return result
}

func (c *Classifier) scoreCategory(cat catalog.Category, tokens []string) float64 {
	keywords := make(map[string]struct{}, len(cat.Keywords))
	for _, kw := range cat.Keywords {
		keywords[kw] = struct{}{}
	}

	score := 0.0
	for _, tok := range tokens {
		if _, ok := keywords[tok]; ok {
			score += c.cfg.KeywordMatch
		}
		for _, syns := range cat.Synonyms {
			for _, syn := range syns {
				if syn == tok {
					score += c.cfg.SynonymMatch
					break
				}
			}
		}
		for _, kw := range cat.Keywords {
			if sim := c.similarity.Score(tok, kw); sim > c.cfg.SimilarityThreshold {
				score += sim
			}
		}
	}
	return score
}
