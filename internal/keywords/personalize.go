// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// InterestSource supplies a user's prior search counts per keyword.
type InterestSource interface {
	Interests(ctx context.Context, userID string) (map[string]int, error)
}

// Blender re-weights a ranked list by a user's prior interests.
type Blender struct {
	factor float64
	source InterestSource
}

// NewBlender creates a blender. A nil source disables personalization.
func NewBlender(cfg PersonalizerConfig, source InterestSource) *Blender {
	return &Blender{factor: cfg.Factor, source: source}
}

// Blend adds interest(term) * factor to each recommendation's relevance,
// records it as PersonalizedBonus, and re-sorts descending with a stable
// sort. Without a user, a source or a recorded profile the list is returned
// untouched.
func (b *Blender) Blend(ctx context.Context, userID string, recs []Recommendation) ([]Recommendation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || b.source == nil || len(recs) == 0 {
		return recs, nil
	}

	interests, err := b.source.Interests(ctx, userID)
	if err != nil {
		return recs, fmt.Errorf("load interests for %s: %w", userID, err)
	}
	if len(interests) == 0 {
		return recs, nil
	}

	out := make([]Recommendation, len(recs))
	copy(out, recs)
	for i := range out {
		if count := interests[out[i].Keyword]; count > 0 {
			bonus := float64(count) * b.factor
			out[i].PersonalizedBonus = bonus
			out[i].RelevanceScore += bonus
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	return out, nil
}
