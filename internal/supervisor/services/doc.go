// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

/*
Package services adapts long-running components to suture.Service.

  - HTTPServerService: ListenAndServe/Shutdown to Serve(ctx)
  - QuotaResetService: cron-driven daily credential reset
  - LearnerService: the search-event consumer that feeds user profiles
  - StorageGCService: periodic value-log garbage collection

Each wrapper returns ctx.Err() on a requested shutdown and a wrapped error on
failure, leaving restart policy to the supervisor.
*/
package services
