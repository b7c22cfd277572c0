// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/assesslink/internal/catalog"
)

// AvailableQuestionnaires lists published questionnaires. Public.
func (h *Handler) AvailableQuestionnaires(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Catalog.Available(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, entries)
}

// ImportQuestionnaire creates or replaces a questionnaire.
func (h *Handler) ImportQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var req catalog.ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	res, err := h.svc.Catalog.Import(r.Context(), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteCreated(w, r, res)
}

// ListQuestionnaires lists every questionnaire, published or not.
func (h *Handler) ListQuestionnaires(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Catalog.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]any{
		"questionnaires": entries,
		"total":          len(entries),
	})
}

// GetQuestionnaire returns one questionnaire with its questions.
func (h *Handler) GetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Catalog.Get(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, q)
}

// SetQuestionnairePublished lists or unlists a questionnaire.
func (h *Handler) SetQuestionnairePublished(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	q, err := h.svc.Catalog.SetPublished(r.Context(), chi.URLParam(r, "type"), *req.IsPublished)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, q.Summary())
}

// RenameQuestionnaire moves a questionnaire to a new type.
func (h *Handler) RenameQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	q, err := h.svc.Catalog.Rename(r.Context(), chi.URLParam(r, "type"), req.NewType)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, q.Summary())
}

// DeleteQuestionnaire removes a questionnaire.
func (h *Handler) DeleteQuestionnaire(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.Delete(r.Context(), chi.URLParam(r, "type")); err != nil {
		WriteError(w, r, err)
		return
	}
	NewResponseWriter(w, r).SuccessWithMessage("deleted", nil)
}
