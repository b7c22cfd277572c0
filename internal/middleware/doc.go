// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package middleware provides HTTP infrastructure middleware: request IDs for
log correlation and Prometheus request instrumentation.

Both are chi-compatible (func(http.Handler) http.Handler):

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics labels requests by the matched chi route pattern
("/api/links/{id}") rather than the raw path, so link and order ids do not
explode metric cardinality. Unmatched requests are labelled "unmatched".
*/
package middleware
