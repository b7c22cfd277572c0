// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package events carries post-commit domain events over an in-process Watermill
bus.

Services publish after their transaction commits (store.Tx.OnCommit), so a
subscriber never sees an event for state that was rolled back. Delivery is
at-most-once across restarts: the bus is a gochannel, not a durable log, and
record state stays authoritative.

Topics:

	order.paid      OrderPaid      an order was fulfilled with a link
	link.redeemed   LinkRedeemed   a link was used by a test taker
	quota.low       QuotaLow       a charge left an account at or below the warning threshold

Handlers run under a message.Router with panic recovery and bounded retries.
A message that still fails after the last retry is logged and dropped so that
gochannel does not redeliver it forever.
*/
package events
