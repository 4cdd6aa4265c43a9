// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/keyscope/internal/logging"
	"github.com/tomtom215/keyscope/internal/metrics"
	"github.com/tomtom215/keyscope/internal/quota"
)

// AddKeyRequest is the body of POST /keys.
type AddKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// AddKeyResponse confirms a registration.
type AddKeyResponse struct {
	Key       string `json:"key"`
	TotalKeys int    `json:"totalKeys"`
}

// KeyStatusResponse reports the credential pool.
type KeyStatusResponse struct {
	Keys             []quota.CredentialStatus `json:"keys"`
	HasAvailableKeys bool                     `json:"hasAvailableKeys"`
	TotalKeys        int                      `json:"totalKeys"`
	NeedsMoreKeys    bool                     `json:"needsMoreKeys"`
}

// ResetKeysResponse reports an explicit reset.
type ResetKeysResponse struct {
	Cleared          int  `json:"cleared"`
	HasAvailableKeys bool `json:"hasAvailableKeys"`
}

// AddKey registers a credential at the end of the rotation.
func (h *Handler) AddKey(w http.ResponseWriter, r *http.Request) {
	var req AddKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	raw := strings.TrimSpace(req.APIKey)
	if _, err := h.credentials.Register(raw); err != nil {
		switch {
		case errors.Is(err, quota.ErrBlankCredential):
			respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "apiKey is required", nil, nil)
		case errors.Is(err, quota.ErrDuplicateCredential):
			respondError(w, r, http.StatusConflict, ErrCodeConflict, "API key is already registered", nil, nil)
		default:
			respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to register API key", nil, err)
		}
		return
	}

	respondSuccess(w, r, http.StatusCreated, AddKeyResponse{
		Key:       quota.Mask(raw),
		TotalKeys: h.credentials.Len(),
	})
}

// KeyStatus reports usage and availability of every credential. Values are
// masked.
func (h *Handler) KeyStatus(w http.ResponseWriter, r *http.Request) {
	available := h.credentials.HasAvailable()
	respondSuccess(w, r, http.StatusOK, KeyStatusResponse{
		Keys:             h.credentials.Status(),
		HasAvailableKeys: available,
		TotalKeys:        h.credentials.Len(),
		NeedsMoreKeys:    !available,
	})
}

// ResetKeys clears every exhaustion flag ahead of the scheduled reset.
func (h *Handler) ResetKeys(w http.ResponseWriter, r *http.Request) {
	cleared := h.credentials.Reset()
	metrics.QuotaResets.WithLabelValues("admin").Inc()
	logging.Ctx(r.Context()).Info().Int("cleared", cleared).Msg("Quota reset by admin")

	respondSuccess(w, r, http.StatusOK, ResetKeysResponse{
		Cleared:          cleared,
		HasAvailableKeys: h.credentials.HasAvailable(),
	})
}
