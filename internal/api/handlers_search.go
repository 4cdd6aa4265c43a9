// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/keyscope/internal/events"
	"github.com/tomtom215/keyscope/internal/logging"
	"github.com/tomtom215/keyscope/internal/quota"
	"github.com/tomtom215/keyscope/internal/youtube"
)

// SearchRequest is the body of POST /youtube/search. Keyword is accepted as
// an alias of query.
type SearchRequest struct {
	youtube.SearchRequest
	Keyword string `json:"keyword,omitempty"`
	UserID  string `json:"userId,omitempty" validate:"omitempty,max=128"`
}

// SearchResponse is the data of a successful search.
type SearchResponse struct {
	*youtube.SearchResult
	ProcessingTime int64 `json:"processingTime"`
}

// YouTubeSearch searches videos, enriches them with statistics and records
// the search against the user profile when a user is named.
func (h *Handler) YouTubeSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		req.Query = req.Keyword
	}
	req.Query = strings.TrimSpace(req.Query)
	if !validateRequest(w, r, &req) {
		return
	}
	if req.MaxViews > 0 && req.MinViews > req.MaxViews {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed,
			"minViews must not exceed maxViews", nil, nil)
		return
	}

	result, err := h.search.Search(r.Context(), &req.SearchRequest)
	if err != nil {
		h.respondUpstreamError(w, r, err)
		return
	}

	if req.UserID != "" && h.events != nil {
		ev := events.SearchCompleted{UserID: req.UserID, Keyword: req.Query}
		if err := h.events.PublishSearchCompleted(r.Context(), ev); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to publish search event")
		}
	}

	respondSuccess(w, r, http.StatusOK, SearchResponse{
		SearchResult:   result,
		ProcessingTime: elapsedMillis(start),
	})
}

// respondUpstreamError translates retrieval failures into envelope codes.
// Upstream messages are not echoed; they may describe the credential.
func (h *Handler) respondUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *youtube.APIError
	switch {
	case errors.Is(err, quota.ErrNoCredentials):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeQuotaExhausted,
			"All API credentials have reached their daily quota", nil, err)
	case errors.Is(err, youtube.ErrRetryBudgetExhausted):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable,
			"Video search is temporarily unavailable", nil, err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeUpstreamTimeout,
			"Video search timed out", nil, err)
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.StatusCode == http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		respondError(w, r, status, ErrCodeUpstreamRejected, "Video search request was rejected",
			map[string]interface{}{"category": string(apiErr.Category), "status": apiErr.StatusCode}, err)
	default:
		respondError(w, r, http.StatusBadGateway, ErrCodeUpstreamUnavailable,
			"Video search failed", nil, err)
	}
}
