// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package supervisor runs the long-lived parts of the server under a suture v4
supervisor tree.

# Layout

	"assesslink"
	├── "maintenance-layer"
	│   ├── link-sweeper      (expires links past their deadline)
	│   ├── order-sweeper     (fails stale pending orders, payment enabled only)
	│   ├── storage-gc        (Badger value-log GC, badger backend only)
	│   └── lockout-cleanup   (drops expired login lockouts)
	├── "messaging-layer"
	│   ├── event-router      (watermill gochannel router feeding notifications)
	│   └── websocket-hub     (live notification delivery)
	└── "api-layer"
	    └── http-server

Each layer counts failures independently, so a sweeper that keeps failing
is backed off without touching the HTTP server.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	tree.AddMessagingService(services.NewRouterService(bus))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

Services live in the services subpackage. Any value with
Serve(ctx) error can be added.
*/
package supervisor
