// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package keywords

import "math"

// TermWeights holds batch-relative TF-IDF scores. Each document's title and
// description form one corpus unit.
type TermWeights struct {
	docs   int
	df     map[string]int
	tfSums map[string]float64
}

// NewTermWeights builds the weights from per-document term counts.
func NewTermWeights(docCounts []map[string]int) *TermWeights {
	tw := &TermWeights{
		docs:   len(docCounts),
		df:     make(map[string]int),
		tfSums: make(map[string]float64),
	}
	for _, counts := range docCounts {
		for term, n := range counts {
			if n <= 0 {
				continue
			}
			tw.df[term]++
			tw.tfSums[term] += float64(n)
		}
	}
	return tw
}

// IDF is the smoothed inverse document frequency 1 + ln(N / (1 + df)).
// It stays positive for any df <= N.
func (tw *TermWeights) IDF(term string) float64 {
	if tw.docs == 0 {
		return 0
	}
	return 1 + math.Log(float64(tw.docs)/float64(1+tw.df[term]))
}

// Score is the mean tf*idf of term over the documents that contain it, or 0
// when no document does.
func (tw *TermWeights) Score(term string) float64 {
	df := tw.df[term]
	if df == 0 {
		return 0
	}
	meanTF := tw.tfSums[term] / float64(df)
	return meanTF * tw.IDF(term)
}

// DocumentFrequency returns how many documents contain term.
func (tw *TermWeights) DocumentFrequency(term string) int {
	return tw.df[term]
}
