// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/keyscope/internal/keywords"
)

// MaxBatchDocuments bounds one analysis batch.
const MaxBatchDocuments = 200

// AnalyzeRequest is the body of POST /keywords/analyze.
type AnalyzeRequest struct {
	SearchResults   []keywords.Document `json:"searchResults" validate:"max=200,dive"`
	OriginalKeyword string              `json:"originalKeyword" validate:"max=200"`
	UserID          string              `json:"userId" validate:"omitempty,max=128"`
}

// AnalyzeResponse is the scoring result plus timing.
type AnalyzeResponse struct {
	*keywords.Result
	ProcessingTime int64 `json:"processingTime"`
}

// ClassifyRequest is the body of POST /keywords/classify.
type ClassifyRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// TrendingRequest is the body of POST /keywords/trending.
type TrendingRequest struct {
	Keyword  string `json:"keyword" validate:"required,notblank,max=100"`
	Category string `json:"category" validate:"max=50"`
	Region   string `json:"region" validate:"omitempty,region"`
}

// TrendingResponse lists the trending variants of a keyword.
type TrendingResponse struct {
	Trending  []keywords.TrendingKeyword `json:"trending"`
	Category  string                     `json:"category"`
	Region    string                     `json:"region"`
	Timestamp time.Time                  `json:"timestamp"`
}

// AnalyzeKeywords scores the candidate terms of a document batch. An empty
// batch is not an error.
func (h *Handler) AnalyzeKeywords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	result, err := h.scorer.Score(r.Context(), req.SearchResults, req.OriginalKeyword, req.UserID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError,
			"Keyword analysis failed", nil, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, AnalyzeResponse{
		Result:         result,
		ProcessingTime: elapsedMillis(start),
	})
}

// ClassifyText assigns a catalog category to free text.
func (h *Handler) ClassifyText(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	respondSuccess(w, r, http.StatusOK, h.scorer.Classify(req.Text))
}

// TrendingKeywords expands a seed keyword into its fastest growing variants.
func (h *Handler) TrendingKeywords(w http.ResponseWriter, r *http.Request) {
	var req TrendingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "general"
	}
	region := strings.ToUpper(strings.TrimSpace(req.Region))
	if region == "" {
		region = "KR"
	}

	respondSuccess(w, r, http.StatusOK, TrendingResponse{
		Trending:  h.scorer.Trending(req.Keyword, region),
		Category:  category,
		Region:    region,
		Timestamp: time.Now().UTC(),
	})
}
