// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/logging"
)

// AccessLog writes one log line per request. Server errors log at error
// level, client errors at warn, everything else at debug so health probes
// stay quiet in production.
func AccessLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := newStatusRecorder(w)
		next(wrapper, r)

		logger := logging.Ctx(r.Context())
		var event *zerolog.Event
		switch {
		case wrapper.statusCode >= http.StatusInternalServerError:
			event = logger.Error()
		case wrapper.statusCode >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Debug()
		}

		event.
			Str("method", r.Method).
			Str("endpoint", RoutePattern(r)).
			Int("status", wrapper.statusCode).
			Str("remote_addr", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}
