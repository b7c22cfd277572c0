// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package database provides the repositories for every persisted entity of
// the Assesslink application.
//
// # Overview
//
// The package sits between the domain services and the record store. Each
// repository wraps a store.Collection with the indexes its entity needs:
//
//   - accounts.go: Accounts, unique by username and email, indexed by role
//   - links.go: Links, indexed by creator, unique by order
//   - questionnaires.go: Questionnaires, keyed by type
//   - notifications.go: Notifications, indexed by user
//   - orders.go: Orders, unique by out_trade_no, indexed by user
//   - maintenance.go: index verification and repair across all collections
//
// # Transactions
//
// Every repository method comes in two forms. The context form runs in its
// own transaction. The Tx form takes a *store.Tx so that services can
// compose several reads and writes into one atomic, conflict-retried unit:
//
//	err := db.Update(ctx, func(tx *store.Tx) error {
//	    order, err := db.Orders.GetByBusinessReferenceTx(tx, outTradeNo)
//	    ...
//	    return db.Links.CreateTx(tx, link)
//	})
//
// # Errors
//
// Store and backend errors are translated into the models taxonomy:
// missing records become models.ErrNotFound, duplicate keys and exhausted
// conflict retries become models.ErrConflict, and backend failures become
// models.ErrBackendUnavailable.
package database
