// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/assesslink/internal/logging"
)

// readyTimeout bounds the backend ping behind /api/health/ready.
const readyTimeout = 2 * time.Second

// HealthLive reports that the process is up. It never touches the backend.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]any{
		"status": "alive",
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether the key/value backend answers. A failed
// check is 503 so load balancers take the instance out of rotation.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		NewResponseWriter(w, r).ServiceUnavailable("storage backend unavailable")
		return
	}
	WriteSuccess(w, r, map[string]any{
		"status":  "ready",
		"storage": h.config.Storage.Backend,
	})
}
