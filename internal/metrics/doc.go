// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered on the default registry with promauto and exposed at
/metrics by the API router.

# Available Metrics

Store Metrics:
  - assesslink_store_txn_total: Transactions (counter). Labels: op, result
  - assesslink_store_conflicts_total: Retried conflicts (counter). Labels: namespace
  - assesslink_store_txn_duration_seconds: Transaction latency (histogram)
  - assesslink_backend_breaker_state: 0=closed, 1=half-open, 2=open (gauge)

Domain Metrics:
  - assesslink_links_issued_total: Labels: source
  - assesslink_link_redemptions_total: Labels: result
  - assesslink_quota_rejections_total
  - assesslink_payment_notifications_total: Labels: outcome
  - assesslink_orders_created_total
  - assesslink_sweeper_expired_total: Labels: kind

HTTP Metrics:
  - assesslink_api_requests_total: Labels: method, route, status
  - assesslink_api_request_duration_seconds: Labels: method, route
  - assesslink_api_active_requests

# Usage

	metrics.RecordAPIRequest("GET", "/api/links", "200", time.Since(start))
	metrics.RecordPaymentNotification("processed")
*/
package metrics
