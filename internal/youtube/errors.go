// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package youtube

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Category classifies an upstream failure.
type Category string

// Failure categories.
const (
	CategoryQuotaExceeded Category = "quota_exceeded"
	CategoryTransient     Category = "transient"
	CategoryOther         Category = "other"
)

var (
	// ErrQuotaExceeded matches any APIError in the quota_exceeded category.
	ErrQuotaExceeded = errors.New("upstream quota exceeded")

	// ErrRetryBudgetExhausted is returned when every allowed attempt failed.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
)

// APIError is a categorized upstream failure.
type APIError struct {
	Category   Category
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("youtube %s: %s (HTTP %d): %s", e.Endpoint, e.Category, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("youtube %s: %s: %v", e.Endpoint, e.Category, e.Err)
	default:
		return fmt.Sprintf("youtube %s: %s: %s", e.Endpoint, e.Category, e.Message)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrQuotaExceeded) match quota failures.
func (e *APIError) Is(target error) bool {
	return target == ErrQuotaExceeded && e.Category == CategoryQuotaExceeded
}

// Retryable reports whether rotating to another credential may help.
func (e *APIError) Retryable() bool {
	return e.Category == CategoryQuotaExceeded || e.Category == CategoryTransient
}

// errorBody is the upstream error envelope.
type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// quotaMarkers are the message fragments that identify a quota rejection.
var quotaMarkers = []string{"quota", "exceeded", "limit"}

// classifyStatus maps an HTTP failure to a category. Only a 403 mentioning
// quota, exceeded or limit is a quota failure; other 403s and 5xx are
// transient; everything else is terminal.
func classifyStatus(status int, message string) Category {
	if status == http.StatusForbidden {
		lower := strings.ToLower(message)
		for _, marker := range quotaMarkers {
			if strings.Contains(lower, marker) {
				return CategoryQuotaExceeded
			}
		}
		return CategoryTransient
	}
	if status >= http.StatusInternalServerError {
		return CategoryTransient
	}
	return CategoryOther
}
