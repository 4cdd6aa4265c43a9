// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/keyscope/internal/keywords"
	"github.com/tomtom215/keyscope/internal/middleware"
)

// HealthStatus is the data of GET /health.
type HealthStatus struct {
	Status        string                     `json:"status"`
	Version       string                     `json:"version"`
	Timestamp     time.Time                  `json:"timestamp"`
	UptimeSeconds float64                    `json:"uptimeSeconds"`
	Scoring       keywords.Stats             `json:"scoring"`
	Credentials   CredentialSummary          `json:"credentials"`
	Latency       []middleware.EndpointStats `json:"latency,omitempty"`
}

// CredentialSummary condenses the credential pool for health checks.
type CredentialSummary struct {
	Total     int  `json:"total"`
	Available bool `json:"available"`
}

// Health reports liveness. The status is "degraded" while no credential can
// serve searches; scoring still works then, so the code stays 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	available := h.credentials.HasAvailable()
	status := "ok"
	if !available {
		status = "degraded"
	}

	health := HealthStatus{
		Status:        status,
		Version:       h.version,
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Scoring:       h.scorer.Stats(),
		Credentials: CredentialSummary{
			Total:     h.credentials.Len(),
			Available: available,
		},
	}
	if h.perf != nil {
		health.Latency = h.perf.Stats()
	}

	respondSuccess(w, r, http.StatusOK, health)
}
