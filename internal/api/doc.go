// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

/*
Package api exposes keyword scoring, video search, topic proposals and
credential management over HTTP.

Routing uses chi with a global middleware stack (request ID with logging
context, real IP, panic recovery, CORS) and per-group httprate limits.
Upstream-backed groups get a stricter limit than pure computation.

Every response uses the same envelope:

	{
	  "success": true,
	  "data": { ... },
	  "error": {"code": "...", "message": "...", "details": {...}},
	  "meta": {"timestamp": "...", "request_id": "...", "duration_ms": 12}
	}

Endpoints:

	POST /api/v1/youtube/search      search and enrich videos
	POST /api/v1/keywords/analyze    score a document batch
	POST /api/v1/keywords/classify   classify free text
	POST /api/v1/keywords/trending   expand a seed into trending variants
	POST /api/v1/content/topics      propose video topics
	POST /api/v1/keys                register a credential (admin)
	GET  /api/v1/keys/status         credential usage and availability
	POST /api/v1/keys/reset          clear exhaustion flags (admin)
	GET  /api/v1/health              liveness, cache and quota summary
	GET  /metrics                    Prometheus exposition

Admin routes require an HS256 bearer token carrying role=admin when admin
auth is enabled.
*/
package api
