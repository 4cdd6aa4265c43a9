// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package cache

import "testing"

func TestAhoCorasick_BasicOperations(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick([]string{"he", "she", "his", "hers"})
	matches := ac.Search("ushers")

	found := make(map[string]int)
	for _, m := range matches {
		found[m.Pattern] = m.Position
	}

	want := map[string]int{"she": 1, "he": 2, "hers": 2}
	for p, pos := range want {
		got, ok := found[p]
		if !ok {
			t.Errorf("Expected to find '%s'", p)
			continue
		}
		if got != pos {
			t.Errorf("Expected '%s' at %d, got %d", p, pos, got)
		}
	}
	if _, ok := found["his"]; ok {
		t.Error("Did not expect 'his'")
	}
}

func TestAhoCorasick_Hangul(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick([]string{"최신", "인기", "급상승", "신상"})

	text := "요즘 인기 급상승 최신 신상 리뷰, 인기 폭발"
	if n := ac.Count(text); n != 5 {
		t.Errorf("Expected 5 matches, got %d", n)
	}

	matches := ac.Search("최신")
	if len(matches) != 1 || matches[0].Position != 0 {
		t.Errorf("Expected single match at 0, got %+v", matches)
	}
}

func TestAhoCorasick_CountDistinct(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick([]string{"인기", "최신", "he", "hers"})

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"평범한 제목", 0},
		{"인기", 1},
		{"인기 인기 인기 영상", 1},
		{"인기 최신 인기 최신", 2},
		{"hers hers", 2},
	}
	for _, tt := range tests {
		if got := ac.CountDistinct(tt.text); got != tt.want {
			t.Errorf("CountDistinct(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}

	if n := ac.Count("인기 인기 인기"); n != 3 {
		t.Errorf("Expected Count to keep every occurrence, got %d", n)
	}
}

func TestAhoCorasick_CaseInsensitive(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick([]string{"Viral", "NEW"})
	if n := ac.Count("viral video, brand new and VIRAL again"); n != 3 {
		t.Errorf("Expected 3 case-insensitive matches, got %d", n)
	}
}

func TestAhoCorasick_EmptyAndDuplicatePatterns(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick([]string{"", "  ", "hot", "HOT"})
	if ac.Len() != 1 {
		t.Errorf("Expected 1 distinct pattern, got %d", ac.Len())
	}
	if ac.Contains("cold") {
		t.Error("Did not expect a match in 'cold'")
	}
	if !ac.Contains("so hot") {
		t.Error("Expected a match in 'so hot'")
	}

	empty := NewAhoCorasick(nil)
	if empty.Count("anything") != 0 {
		t.Error("Expected no matches from empty automaton")
	}
}
