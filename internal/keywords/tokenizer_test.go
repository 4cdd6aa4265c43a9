// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import (
	"reflect"
	"testing"

	"github.com/tomtom215/keyscope/internal/catalog"
)

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"markup removed", "<b>주식</b> 투자", "주식 투자"},
		{"punctuation removed", "투자!! (초보) #재테크", "투자 초보 재테크"},
		{"whitespace collapsed", "  a \n\t b  ", "a b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenizer_Tokenize(t *testing.T) {
	t.Parallel()
	tok := NewTokenizer(catalog.Default())

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"hangul pairs", "<b>주식</b> 투자!", []string{"주식", "투자"}},
		{"duplicates removed", "주식 주식 투자 주식", []string{"주식", "투자"}},
		{"latin lowercased and stop words dropped", "Python 코딩 channel", []string{"코딩", "python"}},
		{"compound before simple", "다이어트 식단", []string{"다이어트", "식단"}},
		{"numbers only", "12345 2024", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tok.Tokenize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenizer_Valid(t *testing.T) {
	t.Parallel()
	tok := NewTokenizer(catalog.Default())

	tests := []struct {
		term string
		want bool
	}{
		{"주식", true},
		{"ai", true},
		{"가", false},
		{"가나다라마바사아자", false},
		{"영상", false},
		{"subscribe", false},
		{"12", false},
		{"2024년", true},
	}

	for _, tt := range tests {
		if got := tok.Valid(tt.term); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestTokenizer_Counts(t *testing.T) {
	t.Parallel()
	tok := NewTokenizer(catalog.Default())

	counts := tok.Counts("다이어트 다이어트 식단 주식")
	if counts["다이어트"] != 2 {
		t.Errorf("Expected 다이어트 counted 2 times, got %d", counts["다이어트"])
	}
	if counts["식단"] != 1 {
		t.Errorf("Expected 식단 counted once, got %d", counts["식단"])
	}
	if _, ok := counts["영상"]; ok {
		t.Error("Expected stop words to be absent from counts")
	}
	if len(tok.Counts("")) != 0 {
		t.Error("Expected no counts for empty text")
	}
}
