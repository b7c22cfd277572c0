// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/assesslink/internal/accounts"
	"github.com/tomtom215/assesslink/internal/models"
)

// ListUsers returns accounts filtered by search, role and status.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := q.Get("search")
	if search == "" {
		search = q.Get("keyword")
	}
	listing, err := h.svc.Accounts.List(r.Context(), accounts.Filter{
		Search:   search,
		Role:     models.Role(q.Get("role")),
		Status:   models.AccountStatus(q.Get("status")),
		Page:     getIntParam(r, "page", 1),
		PageSize: getIntParam(r, "pageSize", 20),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, listing)
}

// GetUser returns one account.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, view)
}

// UpdateUser applies a partial profile or role change.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req accounts.UpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	view, err := h.svc.Accounts.Update(r.Context(), p, chi.URLParam(r, "id"), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, view)
}

// SetUserStatus approves, suspends or re-activates an account.
func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req AccountStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	view, err := h.svc.Accounts.SetStatus(r.Context(), p, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, view)
}

// GrantQuota adds link quota to an account.
func (h *Handler) GrantQuota(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req QuotaGrantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	view, err := h.svc.Accounts.GrantQuota(r.Context(), p, chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, view)
}

// ResetUserPassword replaces an account's password with a generated one
// and returns it once.
func (h *Handler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	pw, err := h.svc.Accounts.ResetPassword(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]string{"newPassword": pw})
}

// DeleteUser removes an account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.svc.Accounts.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	NewResponseWriter(w, r).SuccessWithMessage("deleted", nil)
}

// BatchDeleteUsers removes several accounts, skipping the caller and
// unknown ids.
func (h *Handler) BatchDeleteUsers(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req UserIDsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	n, err := h.svc.Accounts.BatchDelete(r.Context(), p, req.UserIDs)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]int{"deletedCount": n})
}
