// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/keyscope/internal/logging"
	"github.com/tomtom215/keyscope/internal/validation"
)

// APIResponse is the envelope of every response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains additional error details (optional)
	Details interface{} `json:"details,omitempty"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"
	ErrCodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeQuotaExhausted      = "QUOTA_EXHAUSTED"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamRejected    = "UPSTREAM_REJECTED"
	ErrCodeUpstreamTimeout     = "UPSTREAM_TIMEOUT"
)

// requestStartKey carries the time the request entered the router.
type requestStartKey struct{}

// respondJSON writes payload with status.
func respondJSON(w http.ResponseWriter, status int, payload *APIResponse) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// newMeta builds the response metadata for r.
func newMeta(r *http.Request) *APIMeta {
	meta := &APIMeta{
		Timestamp: time.Now().UTC(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if start, ok := r.Context().Value(requestStartKey{}).(time.Time); ok {
		meta.DurationMs = time.Since(start).Milliseconds()
	}
	return meta
}

// respondSuccess writes a success envelope around data.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	respondJSON(w, status, &APIResponse{
		Success: true,
		Data:    data,
		Meta:    newMeta(r),
	})
}

// respondError writes an error envelope. err is logged, never echoed.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}

	respondJSON(w, status, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: newMeta(r),
	})
}

// decodeJSON reads a single JSON document from the request body into v.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Request body is required", nil, nil)
		return false
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit), nil, err)
			return false
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body", nil, err)
		return false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Request body is required", nil, nil)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", nil, err)
		return false
	}
	return true
}

// validateRequest runs struct validation and writes a 400 on failure.
func validateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, apiErr.Message, apiErr.Details, nil)
	return false
}

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
