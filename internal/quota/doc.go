// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

/*
Package quota rotates upstream API credentials under a per-day unit ceiling.

A Manager owns the credential pool. Every credential is in one of two states
for the current day:

	available -> exhausted

A credential becomes exhausted when its recorded usage reaches the daily
limit, or when the upstream reports a quota failure for it. Exhaustion is
one-way until Reset is called; Reset clears the flags but keeps today's usage,
so a credential at its ceiling stays ineligible until the next day starts.

# Selection

Next scans the pool from a rotating cursor and returns the first credential
that is neither exhausted nor at its ceiling. Acquire does the same and
reserves the units of the upcoming call in the same critical section, so two
concurrent callers cannot both spend the last units of one credential.
Release refunds a reservation when the call turned out not to consume quota.

# Persistence

Usage is keyed by credential and calendar date in the configured time zone.
An optional UsageStore keeps today's counters across restarts; store failures
are logged and never fail a selection.

# Masking

Raw credentials never leave this package through Status, logs or metrics.
Mask returns the first 20 characters followed by "..." for long values and
the first 4 for short ones.
*/
package quota
