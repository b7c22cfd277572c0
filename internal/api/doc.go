// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package api provides the HTTP REST API layer for Assesslink.

It is a thin adapter: handlers decode and validate a request, call one
service method, and render the result. Business rules live in the
accounts, catalog, lifecycle, payment and notify packages.

Key Components:

  - Router: chi route tree and the global middleware stack
  - Handler: request handlers grouped by resource (handlers_*.go)
  - Response formatting: the {success, code, message, data} envelope
  - Error mapping: domain errors to HTTP statuses, in one place (errors.go)
  - Rate limiting: per-IP httprate limits, strict on login, register and
    the payment notify callback

Middleware Stack (outermost first):

 1. RequestID - request and correlation ids for logging
 2. RealIP - client address from X-Forwarded-For / X-Real-IP
 3. Recoverer - turns handler panics into 500s
 4. APISecurityHeaders
 5. CORS (go-chi/cors)
 6. PrometheusMetrics - per-route request counters and latency
 7. RateLimit - global per-IP limit
 8. auth.Optional - attaches the principal when a Bearer token is sent
 9. authz.Authorize - casbin RBAC on path and method

The payment notify endpoint is the one place that does not speak JSON:
the gateway expects the plain-text bodies "success", "ignored",
"invalid sign" and "fail".

Example:

	handler := api.NewHandler(cfg, db, api.Services{...})
	router := api.NewRouter(handler, authMW, authzMW)
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.Setup()}
*/
package api
