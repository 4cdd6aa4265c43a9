// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

/*
Package supervisor runs the server's long-lived goroutines under a suture v4
supervision tree.

Services are grouped into layers so that a misbehaving component is restarted
and backed off without taking the others down:

  - data-layer: badger value-log GC (only when persistent storage is on)
  - background-layer: the cron quota reset and the profile learner
  - api-layer: the HTTP server

Wrappers for each component live in the services subpackage. Supervisor events
(restarts, backoff, timeouts) are logged through sutureslog.

Usage:

	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, addr, 10*time.Second, logger))
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
*/
package supervisor
