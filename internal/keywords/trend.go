// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/keyscope/internal/cache"
	"github.com/tomtom215/keyscope/internal/catalog"
)

// TrendLookup is a pseudo search-trend reading for one keyword. Values are
// derived deterministically from the keyword, region and hour; there is no
// live trends backend behind them.
type TrendLookup struct {
	Keyword        string   `json:"keyword"`
	Region         string   `json:"region"`
	Growth         int      `json:"growth"`
	SearchVolume   int      `json:"searchVolume"`
	RelatedQueries []string `json:"relatedQueries"`
}

// TrendingKeyword is one entry of a trending expansion.
type TrendingKeyword struct {
	Keyword      string  `json:"keyword"`
	Growth       int     `json:"growth"`
	SearchVolume int     `json:"searchVolume"`
	Seasonal     float64 `json:"seasonal"`
}

// yearSuffix marks where the current year is inserted into the variants.
const yearSuffix = "{year}"

// trendingSuffixes expand a seed keyword into common query variants.
var trendingSuffixes = []string{"방법", "추천", yearSuffix, "최신", "팁"}

// TrendScorer computes the recency, peak-hour and seasonal signals.
type TrendScorer struct {
	cfg        TrendConfig
	catalog    *catalog.Catalog
	indicators *cache.AhoCorasick
	lookups    *cache.LRU[string, TrendLookup]
	loc        *time.Location
}

// NewTrendScorer creates a scorer evaluating hours and months in loc.
func NewTrendScorer(cfg TrendConfig, cat *catalog.Catalog, loc *time.Location) *TrendScorer {
	if loc == nil {
		loc = time.UTC
	}
	return &TrendScorer{
		cfg:        cfg,
		catalog:    cat,
		indicators: cache.NewAhoCorasick(cat.TrendIndicators()),
		lookups:    cache.NewLRU[string, TrendLookup](cfg.CacheSize, cfg.CacheTTL),
		loc:        loc,
	}
}

// Score counts the distinct indicator phrases present in each context, weighs each hit by
// HitWeight, applies the peak-hour multiplier when at falls in the peak
// window, and normalizes by the number of contexts. The result is capped at 1.
func (ts *TrendScorer) Score(contexts []string, at time.Time) float64 {
	if len(contexts) == 0 {
		return 0
	}

	hits := 0
	for _, c := range contexts {
		hits += ts.indicators.CountDistinct(c)
	}
	score := float64(hits) * ts.cfg.HitWeight
	if ts.InPeakWindow(at) {
		score *= ts.cfg.PeakMultiplier
	}

	score /= float64(len(contexts))
	if score > 1 {
		return 1
	}
	return score
}

// InPeakWindow reports whether at falls within the peak engagement hours.
func (ts *TrendScorer) InPeakWindow(at time.Time) bool {
	hour := at.In(ts.loc).Hour()
	return hour >= ts.cfg.PeakStartHour && hour <= ts.cfg.PeakEndHour
}

// Seasonal returns the catalog multiplier for term in the month of at.
func (ts *TrendScorer) Seasonal(term string, at time.Time) float64 {
	return ts.catalog.SeasonalBoost(int(at.In(ts.loc).Month()), term)
}

// Lookup returns the pseudo-trend reading for keyword, cached for CacheTTL.
func (ts *TrendScorer) Lookup(keyword, region string, at time.Time) TrendLookup {
	keyword = strings.TrimSpace(keyword)
	region = normalizeRegion(region)
	key := keyword + "\x00" + region
	if v, ok := ts.lookups.Get(key); ok {
		return v
	}

	bucket := at.In(ts.loc).Truncate(time.Hour).Unix()
	h := xxhash.Sum64String(key + "\x00" + strconv.FormatInt(bucket, 10))

	year := strconv.Itoa(at.In(ts.loc).Year())
	lookup := TrendLookup{
		Keyword:      keyword,
		Region:       region,
		Growth:       int(h%50) + 1,
		SearchVolume: int((h>>8)%100000) + 1000,
		RelatedQueries: []string{
			keyword + " 방법",
			keyword + " 추천",
			keyword + " " + year,
			keyword + " 최신",
		},
	}
	ts.lookups.Add(key, lookup)
	return lookup
}

// Trending expands seed into query variants, looks each up, and returns the
// fastest growing ones with their seasonal multiplier attached.
func (ts *TrendScorer) Trending(seed, region string, at time.Time) []TrendingKeyword {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return []TrendingKeyword{}
	}

	year := strconv.Itoa(at.In(ts.loc).Year())
	seasonal := ts.Seasonal(seed, at)

	out := make([]TrendingKeyword, 0, len(trendingSuffixes))
	for _, suffix := range trendingSuffixes {
		if suffix == yearSuffix {
			suffix = year
		}
		l := ts.Lookup(seed+" "+suffix, region, at)
		out = append(out, TrendingKeyword{
			Keyword:      l.Keyword,
			Growth:       l.Growth,
			SearchVolume: l.SearchVolume,
			Seasonal:     seasonal,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Growth > out[j].Growth
	})
	if len(out) > ts.cfg.TrendingLimit {
		out = out[:ts.cfg.TrendingLimit]
	}
	return out
}

// CacheStats exposes the lookup cache counters.
func (ts *TrendScorer) CacheStats() cache.Stats {
	return ts.lookups.Stats()
}

func normalizeRegion(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return "KR"
	}
	return region
}
