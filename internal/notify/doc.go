// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package notify manages user notifications and turns domain events into
// them: order.paid becomes payment-success, link.redeemed becomes completed,
// and quota.low becomes quota-warning.
package notify
