// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

/*
Package main is the entry point for the Keyscope server.

Keyscope searches YouTube through a pool of quota-limited API keys, extracts
and ranks keywords from the returned videos, classifies them into catalog
categories, and proposes follow-up video topics.

# Process Layout

	keyscope
	├── data-layer
	│   └── storage-gc         (STORAGE_ENABLED=true)
	├── background-layer
	│   ├── quota-reset        (QUOTA_RESET_ENABLED=true)
	│   └── profile-learner
	└── api-layer
	    └── http-server

Initialization order:

 1. Configuration: koanf defaults, then config.yaml, then environment
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Catalog: embedded tables or CATALOG_PATH
 4. Storage: badger when STORAGE_ENABLED, otherwise in-memory stores
 5. Quota manager: seeded from YOUTUBE_API_KEYS, usage restored from storage
 6. Clients: YouTube search and the optional completion backend
 7. Scorer, event bus and profile learner
 8. HTTP router and supervisor tree

# Configuration

Commonly used environment variables:

	HTTP_PORT            listen port (default 5000)
	YOUTUBE_API_KEYS     comma-separated credentials
	QUOTA_DAILY_LIMIT    units per credential per day (default 9500)
	QUOTA_TIMEZONE       quota day boundary (default Asia/Seoul)
	OPENAI_API_KEY       enables generated topics
	STORAGE_PATH         badger directory
	ADMIN_AUTH_ENABLED   require an admin JWT on key management
	JWT_SECRET           HS256 signing secret

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains for
SHUTDOWN_TIMEOUT, background services stop, then storage is closed.
*/
package main
