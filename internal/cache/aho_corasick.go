// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package cache

import (
	"strings"
	"unicode/utf8"
)

// AhoCorasick finds every occurrence of a fixed phrase set in one pass over
// the text, in O(n + m + z) for text length n, total pattern length m and
// z matches. It is immutable after construction and safe for concurrent use.
//
// Matching is case-insensitive and rune based, so Hangul phrases such as
// "급상승" and Latin ones such as "viral" share one automaton:
//
//	ac := cache.NewAhoCorasick([]string{"최신", "인기", "trending"})
//	hits := ac.Count("요즘 인기 최신 트렌드")  // 2
type AhoCorasick struct {
	root     *acNode
	patterns []string
}

type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int
}

// Match is one pattern occurrence. Position is the byte offset of the match
// start in the lower-cased text.
type Match struct {
	Pattern  string
	Position int
}

// NewAhoCorasick builds the automaton for patterns. Empty and duplicate
// patterns are ignored.
func NewAhoCorasick(patterns []string) *AhoCorasick {
	ac := &AhoCorasick{root: newACNode()}

	seen := make(map[string]struct{}, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		ac.insert(len(ac.patterns), p)
		ac.patterns = append(ac.patterns, p)
	}

	ac.buildFailureLinks()
	return ac
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

func (ac *AhoCorasick) insert(index int, pattern string) {
	node := ac.root
	for _, ch := range pattern {
		next, ok := node.children[ch]
		if !ok {
			next = newACNode()
			node.children[ch] = next
		}
		node = next
	}
	node.output = append(node.output, index)
}

// buildFailureLinks wires failure links breadth first.
func (ac *AhoCorasick) buildFailureLinks() {
	queue := make([]*acNode, 0, len(ac.root.children))
	for _, child := range ac.root.children {
		child.failure = ac.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = ac.root
				continue
			}
			child.failure = fail.children[ch]
			child.output = append(child.output, child.failure.output...)
		}
	}
}

// Search returns every match in text, including overlapping ones.
func (ac *AhoCorasick) Search(text string) []Match {
	var matches []Match
	ac.walk(text, func(patternIdx, end int) {
		p := ac.patterns[patternIdx]
		matches = append(matches, Match{Pattern: p, Position: end - len(p)})
	})
	return matches
}

// Count returns the number of matches in text.
func (ac *AhoCorasick) Count(text string) int {
	n := 0
	ac.walk(text, func(int, int) { n++ })
	return n
}

// CountDistinct returns the number of distinct patterns found in text.
// Repeated occurrences of the same pattern count once.
func (ac *AhoCorasick) CountDistinct(text string) int {
	seen := make(map[int]struct{})
	ac.walk(text, func(patternIdx, _ int) { seen[patternIdx] = struct{}{} })
	return len(seen)
}

// Contains reports whether text holds at least one pattern.
func (ac *AhoCorasick) Contains(text string) bool {
	return ac.Count(text) > 0
}

// Len returns the number of distinct patterns.
func (ac *AhoCorasick) Len() int {
	return len(ac.patterns)
}

// walk feeds the lower-cased text through the automaton, calling emit with
// the pattern index and the byte offset just past the match.
func (ac *AhoCorasick) walk(text string, emit func(patternIdx, end int)) {
	if len(ac.patterns) == 0 || text == "" {
		return
	}

	node := ac.root
	lowered := strings.ToLower(text)
	for i, ch := range lowered {
		for node != ac.root && node.children[ch] == nil {
			node = node.failure
		}
		if next, ok := node.children[ch]; ok {
			node = next
		}
		end := i + utf8.RuneLen(ch)
		for _, idx := range node.output {
			emit(idx, end)
		}
	}
}
