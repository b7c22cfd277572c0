// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package main is the entry point for the Assesslink server.
//
// Assesslink sells single-use assessment links. Accounts spend quota to
// issue links, anonymous buyers pay for one through the zpay gateway, and a
// respondent redeems a link exactly once when they submit the questionnaire.
//
// # Startup
//
//  1. Configuration: defaults, then config file, then environment (Koanf v2)
//  2. Logging: zerolog, configured from LOG_LEVEL / LOG_FORMAT
//  3. Storage: Badger (or the in-memory backend) behind the record store
//  4. Event bus: watermill gochannel router, notification subscribers
//  5. Services: accounts, catalog, links, notifications, payments
//  6. Bootstrap admin from ADMIN_USERNAME / ADMIN_PASSWORD when set
//  7. Supervisor tree: HTTP server, event router and maintenance jobs
//
// # Flags
//
//	--config PATH       explicit config file (otherwise CONFIG_PATH or config.yaml)
//	--verify-indexes    report secondary index drift and exit
//	--repair-indexes    rebuild secondary indexes and exit
//
// # Signals
//
// SIGINT and SIGTERM cancel the root context. The supervisor drains the
// HTTP server, stops the event router, and the store is closed last.
package main
