// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package quota

import "context"

// UsageStore persists per-day credential usage. Credentials are identified
// by CredentialID, never by their raw value.
type UsageStore interface {
	// LoadUsage returns credential id -> units for day (YYYY-MM-DD).
	LoadUsage(ctx context.Context, day string) (map[string]int, error)

	// SaveUsage records the current total for one credential and day.
	SaveUsage(ctx context.Context, day, id string, units int) error
}
