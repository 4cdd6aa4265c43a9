// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package catalog loads the static lookup tables the keyword pipeline scores
// against: category keyword and synonym lists, the stop-word set, the monthly
// seasonal boost table, trend indicator phrases and the sentiment lexicon.
//
// The tables live in YAML so they can be tuned without a redeploy. A catalog
// is read once at startup and never mutated afterwards; accessors hand out
// copies, so a *Catalog can be shared freely between goroutines.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// DefaultFallbackCategory labels corpora that match no configured category.
const DefaultFallbackCategory = "general"

// ErrInvalidCatalog is wrapped by every validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Category is a named keyword group with per-keyword synonym lists.
type Category struct {
	Name     string              `yaml:"name" json:"name"`
	Keywords []string            `yaml:"keywords" json:"keywords"`
	Synonyms map[string][]string `yaml:"synonyms" json:"synonyms"`
}

// document is the on-disk shape of a catalog file.
type document struct {
	FallbackCategory string                     `yaml:"fallback_category"`
	Categories       []Category                 `yaml:"categories"`
	StopWords        []string                   `yaml:"stop_words"`
	TrendIndicators  []string                   `yaml:"trend_indicators"`
	Seasonal         map[int]map[string]float64 `yaml:"seasonal"`
	Sentiment        map[string]int             `yaml:"sentiment"`
}

// Catalog is the frozen, normalized form of a catalog document. Terms are
// lower-cased on load so lookups match tokenizer output.
type Catalog struct {
	fallback        string
	categories      []Category
	stopWords       map[string]struct{}
	trendIndicators []string
	seasonal        map[int]map[string]float64
	sentiment       map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		// The embedded file is covered by tests; failing here is a build defect.
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path. An empty path selects the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	//nolint:gosec // G304: path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc.freeze(), nil
}

func (d *document) validate() error {
	var errs []error

	seen := make(map[string]struct{}, len(d.Categories))
	for i, cat := range d.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("categories[%d]: name is required", i))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("categories[%d]: duplicate name %q", i, name))
		}
		seen[name] = struct{}{}
		if len(cat.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("category %q: at least one keyword is required", name))
		}
	}

	for month, terms := range d.Seasonal {
		if month < 1 || month > 12 {
			errs = append(errs, fmt.Errorf("seasonal: month %d out of range 1-12", month))
		}
		for term, mult := range terms {
			if mult <= 0 {
				errs = append(errs, fmt.Errorf("seasonal[%d][%s]: multiplier must be positive, got %v", month, term, mult))
			}
		}
	}

	for term, score := range d.Sentiment {
		if score < -5 || score > 5 {
			errs = append(errs, fmt.Errorf("sentiment[%s]: score %d out of range -5..5", term, score))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
}

func (d *document) freeze() *Catalog {
	c := &Catalog{
		fallback:   strings.TrimSpace(d.FallbackCategory),
		categories: make([]Category, 0, len(d.Categories)),
		stopWords:  make(map[string]struct{}, len(d.StopWords)),
		seasonal:   make(map[int]map[string]float64, len(d.Seasonal)),
		sentiment:  make(map[string]int, len(d.Sentiment)),
	}
	if c.fallback == "" {
		c.fallback = DefaultFallbackCategory
	}

	for _, cat := range d.Categories {
		frozen := Category{
			Name:     strings.TrimSpace(cat.Name),
			Keywords: normalizeList(cat.Keywords),
			Synonyms: make(map[string][]string, len(cat.Synonyms)),
		}
		for head, syns := range cat.Synonyms {
			frozen.Synonyms[normalize(head)] = normalizeList(syns)
		}
		c.categories = append(c.categories, frozen)
	}

	for _, w := range d.StopWords {
		if w = normalize(w); w != "" {
			c.stopWords[w] = struct{}{}
		}
	}

	c.trendIndicators = normalizeList(d.TrendIndicators)

	for month, terms := range d.Seasonal {
		table := make(map[string]float64, len(terms))
		for term, mult := range terms {
			table[normalize(term)] = mult
		}
		c.seasonal[month] = table
	}

	for term, score := range d.Sentiment {
		if term = normalize(term); term != "" {
			c.sentiment[term] = score
		}
	}

	return c
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = normalize(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// FallbackCategory returns the catch-all label.
func (c *Catalog) FallbackCategory() string {
	return c.fallback
}

// Categories returns the categories in configuration order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		syns := make(map[string][]string, len(cat.Synonyms))
		for head, list := range cat.Synonyms {
			syns[head] = append([]string(nil), list...)
		}
		out[i] = Category{
			Name:     cat.Name,
			Keywords: append([]string(nil), cat.Keywords...),
			Synonyms: syns,
		}
	}
	return out
}

// CategoryNames returns the configured category names in order.
func (c *Catalog) CategoryNames() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// IsStopWord reports whether term is in the stop-word set.
func (c *Catalog) IsStopWord(term string) bool {
	_, ok := c.stopWords[normalize(term)]
	return ok
}

// StopWordCount returns the size of the stop-word set.
func (c *Catalog) StopWordCount() int {
	return len(c.stopWords)
}

// TrendIndicators returns the recency and popularity indicator phrases.
func (c *Catalog) TrendIndicators() []string {
	return append([]string(nil), c.trendIndicators...)
}

// SeasonalBoost returns the multiplier for term in month, or 1.0.
func (c *Catalog) SeasonalBoost(month int, term string) float64 {
	if mult, ok := c.seasonal[month][normalize(term)]; ok {
		return mult
	}
	return 1.0
}

// Sentiment returns a copy of the sentiment lexicon.
func (c *Catalog) Sentiment() map[string]int {
	out := make(map[string]int, len(c.sentiment))
	for k, v := range c.sentiment {
		out[k] = v
	}
	return out
}
