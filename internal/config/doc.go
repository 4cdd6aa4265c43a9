// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

/*
Package config loads and validates Keyscope configuration.

# Configuration Sources

Sources are layered with Koanf, later sources overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: CONFIG_PATH, else config.yaml / config.yml in the working
    directory, else /etc/keyscope/config.yaml
 3. Environment variables from an explicit allow-list (envTransformFunc)

List values such as YOUTUBE_API_KEYS and CORS_ORIGINS may be given as
comma-separated strings.

# Configuration Structure

  - Server: HTTP listener and timeouts
  - Logging: zerolog level and format
  - YouTube: retrieval client, retry budget and circuit breaker
  - Quota: daily unit ceiling, timezone, credentials and the reset schedule
  - LLM: optional text-generation endpoint
  - Storage: badger persistence for profiles and usage counters
  - Catalog: path to the category/lexicon tables (embedded default if empty)
  - Scoring: keyword pipeline weights and cache sizes
  - Events: in-process event bus
  - Security: CORS, rate limiting and admin JWT authentication

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Invalid configuration")
	}

Credentials and secrets are never logged; CredentialCount is the only view
of the credential list intended for output.
*/
package config
