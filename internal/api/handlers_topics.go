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
	"github.com/tomtom215/keyscope/internal/llm"
)

// TopicsRequest is the body of POST /content/topics.
type TopicsRequest struct {
	Keyword       string              `json:"keyword" validate:"required,notblank,max=100"`
	SearchResults []keywords.Document `json:"searchResults" validate:"max=200,dive"`
	llm.TopicOptions
}

// TopicsResponse is the proposed topic set plus timing.
type TopicsResponse struct {
	llm.TopicSet
	ProcessingTime int64 `json:"processingTime"`
}

// GenerateTopics proposes video topics for a keyword. It always answers with
// a full topic set; aiGenerated tells whether the text generator produced it.
func (h *Handler) GenerateTopics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req TopicsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	set := h.topics.Topics(r.Context(), strings.TrimSpace(req.Keyword), req.SearchResults, req.TopicOptions)
	respondSuccess(w, r, http.StatusOK, TopicsResponse{
		TopicSet:       set,
		ProcessingTime: elapsedMillis(start),
	})
}
