// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package services provides suture.Service wrappers for Assesslink components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer, which suture uses to name the service in its events.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server, translating ListenAndServe into Serve
  - Shuts down gracefully within a configurable timeout

Runners (RouterService):
  - Wraps anything with Run(ctx) error: the events.Bus router and the
    websocket.Hub
  - Closing the bus is left to main once the tree has stopped

Periodic Jobs (PeriodicService):
  - Runs a function on a fixed interval until canceled
  - Used for the link expiry sweeper, the stale order sweeper, Badger value
    log GC and login lockout cleanup
  - A job error is logged and the next tick runs normally; only a panic
    reaches the supervisor
*/
package services
