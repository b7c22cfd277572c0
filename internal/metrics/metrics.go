// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store Metrics
	StoreTxnTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assesslink_store_txn_total",
			Help: "Total number of record store transactions by mode and result",
		},
		[]string{"op", "result"}, // op: view|update, result: ok|error|conflict
	)

	StoreConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assesslink_store_conflicts_total",
			Help: "Total number of optimistic transaction conflicts that triggered a retry",
		},
		[]string{"namespace"},
	)

	StoreTxnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assesslink_store_txn_duration_seconds",
			Help:    "Duration of record store transactions including retries",
			Buckets: prometheus.DefBuckets,
		},
	)

	BackendBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assesslink_backend_breaker_state",
			Help: "Backend circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Domain Metrics
	LinksIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assesslink_links_issued_total",
			Help: "Total number of links created by issuance source",
		},
		[]string{"source"}, // quota|payment
	)

	LinkRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assesslink_link_redemptions_total",
			Help: "Total number of link redemption attempts by result",
		},
		[]string{"result"}, // ok|already_finalized|invalid_transition|not_found|error
	)

	QuotaRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assesslink_quota_rejections_total",
			Help: "Total number of issuance requests rejected for insufficient quota",
		},
	)

	PaymentNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assesslink_payment_notifications_total",
			Help: "Total number of payment gateway notifications by outcome",
		},
		[]string{"outcome"},
	)

	OrdersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assesslink_orders_created_total",
			Help: "Total number of pending orders created at checkout",
		},
	)

	SweeperExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assesslink_sweeper_expired_total",
			Help: "Total number of records transitioned by the background sweeper",
		},
		[]string{"kind"}, // link|order
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assesslink_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assesslink_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assesslink_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assesslink_websocket_connections",
			Help: "Number of open notification WebSocket connections",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assesslink_events_published_total",
			Help: "Total number of domain events published to the in-process bus",
		},
		[]string{"topic", "result"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assesslink_events_dropped_total",
			Help: "Total number of events acknowledged without success after every retry failed",
		},
		[]string{"topic"},
	)
)

// RecordStoreTxn records a finished store transaction.
func RecordStoreTxn(op, result string, duration time.Duration) {
	StoreTxnTotal.WithLabelValues(op, result).Inc()
	StoreTxnDuration.Observe(duration.Seconds())
}

// RecordStoreConflict records one retried conflict.
func RecordStoreConflict(namespace string) {
	if namespace == "" {
		namespace = "unknown"
	}
	StoreConflicts.WithLabelValues(namespace).Inc()
}

// SetBreakerState publishes the backend breaker state.
func SetBreakerState(state float64) {
	BackendBreakerState.Set(state)
}

// RecordLinksIssued records n links created through source.
func RecordLinksIssued(source string, n int) {
	LinksIssued.WithLabelValues(source).Add(float64(n))
}

// RecordRedemption records a redemption attempt result.
func RecordRedemption(result string) {
	LinkRedemptions.WithLabelValues(result).Inc()
}

// RecordQuotaRejection records an issuance refused by the ledger.
func RecordQuotaRejection() {
	QuotaRejections.Inc()
}

// RecordPaymentNotification records a gateway notification outcome.
func RecordPaymentNotification(outcome string) {
	PaymentNotifications.WithLabelValues(outcome).Inc()
}

// RecordOrderCreated records a new pending order.
func RecordOrderCreated() {
	OrdersCreated.Inc()
}

// RecordSweep records records transitioned by a sweeper pass.
func RecordSweep(kind string, n int) {
	if n <= 0 {
		return
	}
	SweeperExpired.WithLabelValues(kind).Add(float64(n))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEventPublished records a publish attempt to the event bus.
func RecordEventPublished(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordEventDropped records an event given up on after its retries.
func RecordEventDropped(topic string) {
	EventsDropped.WithLabelValues(topic).Inc()
}
