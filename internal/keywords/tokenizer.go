// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tomtom215/keyscope/internal/catalog"
)

var (
	markupPattern     = regexp.MustCompile(`<[^>]*>`)
	nonWordPattern    = regexp.MustCompile(`[^0-9A-Za-z_가-힣\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	// compoundPattern captures 3-6 syllable runs plus an optional 1-3 syllable tail.
	compoundPattern = regexp.MustCompile(`[가-힣]{3,6}(?:[가-힣]{1,3})?`)
	simplePattern   = regexp.MustCompile(`[가-힣]{2,4}`)
	latinPattern    = regexp.MustCompile(`[A-Za-z]{2,10}`)
)

const (
	minTokenRunes = 2
	maxTokenRunes = 8
)

// Tokenizer extracts candidate terms from free text.
type Tokenizer struct {
	catalog *catalog.Catalog
}

// NewTokenizer creates a tokenizer that filters against cat's stop words.
func NewTokenizer(cat *catalog.Catalog) *Tokenizer {
	return &Tokenizer{catalog: cat}
}

// Clean strips markup and punctuation and collapses whitespace.
func Clean(text string) string {
	text = markupPattern.ReplaceAllString(text, " ")
	text = nonWordPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tokenize returns the distinct valid terms of text in first-seen order:
// compound Hangul runs, then short Hangul runs, then lower-cased Latin words.
func (t *Tokenizer) Tokenize(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, group := range t.extract(text) {
		for _, term := range group {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

// Counts returns how often each valid term occurs in text. A surface run
// matched by both Hangul patterns is counted once, by taking the larger of
// the per-pattern counts.
func (t *Tokenizer) Counts(text string) map[string]int {
	counts := make(map[string]int)
	for _, group := range t.extract(text) {
		local := make(map[string]int, len(group))
		for _, term := range group {
			local[term]++
		}
		for term, n := range local {
			if n > counts[term] {
				counts[term] = n
			}
		}
	}
	return counts
}

// extract runs the three patterns over the cleaned text and returns the
// valid matches of each, in pattern order.
func (t *Tokenizer) extract(text string) [3][]string {
	var groups [3][]string
	if text == "" {
		return groups
	}
	cleaned := Clean(text)
	if cleaned == "" {
		return groups
	}

	for _, tok := range compoundPattern.FindAllString(cleaned, -1) {
		if t.Valid(tok) {
			groups[0] = append(groups[0], tok)
		}
	}
	for _, tok := range simplePattern.FindAllString(cleaned, -1) {
		if t.Valid(tok) {
			groups[1] = append(groups[1], tok)
		}
	}
	for _, tok := range latinPattern.FindAllString(cleaned, -1) {
		tok = strings.ToLower(tok)
		if t.Valid(tok) {
			groups[2] = append(groups[2], tok)
		}
	}
	return groups
}

// Valid reports whether term may be a candidate: 2-8 runes, not a stop word,
// not purely numeric, and holding at least one letter.
func (t *Tokenizer) Valid(term string) bool {
	n := utf8.RuneCountInString(term)
	if n < minTokenRunes || n > maxTokenRunes {
		return false
	}
	if t.catalog != nil && t.catalog.IsStopWord(term) {
		return false
	}

	allDigits := true
	hasLetter := false
	for _, r := range term {
		if !unicode.IsDigit(r) {
			allDigits = false
		}
		if isHangulSyllable(r) || (r < utf8.RuneSelf && unicode.IsLetter(r)) {
			hasLetter = true
		}
	}
	return !allDigits && hasLetter
}

func isHangulSyllable(r rune) bool {
	return r >= '가' && r <= '힣'
}
