// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package payment creates zpay checkouts and reconciles the gateway's
// asynchronous notifications into paid orders and prepaid links.
//
// Reconciliation is idempotent: the order lookup, link creation and order
// update share one optimistic transaction, and the links collection holds
// a unique index on the order id, so duplicate or concurrent deliveries of
// the same notification produce exactly one link.
package payment
