// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"net/http"

	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/store"
)

// indexSummary is the response of the index maintenance endpoints.
type indexSummary struct {
	Clean       bool                         `json:"clean"`
	Collections map[string]store.IndexReport `json:"collections"`
}

func summarize(reports map[string]store.IndexReport) indexSummary {
	clean := true
	for _, rep := range reports {
		if !rep.Clean() {
			clean = false
		}
	}
	return indexSummary{Clean: clean, Collections: reports}
}

// VerifyIndexes reports index drift in every collection without fixing it.
func (h *Handler) VerifyIndexes(w http.ResponseWriter, r *http.Request) {
	reports, err := h.db.VerifyIndexes(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, summarize(reports))
}

// RepairIndexes rebuilds drifted index entries from the records.
func (h *Handler) RepairIndexes(w http.ResponseWriter, r *http.Request) {
	reports, err := h.db.RepairIndexes(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int("collections", len(reports)).Msg("Index repair completed")
	WriteSuccess(w, r, summarize(reports))
}
