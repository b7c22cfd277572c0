// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"net/http"

	"github.com/tomtom215/assesslink/internal/accounts"
)

// Register creates an account. The first account on an empty system is an
// active admin; later ones wait for approval.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req accounts.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	a, err := h.svc.Accounts.Register(r.Context(), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteCreated(w, r, a.View())
}

// Login exchanges credentials for a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req accounts.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	session, err := h.svc.Accounts.Login(r.Context(), req, r.RemoteAddr)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, session)
}

// Me returns the caller's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	view, err := h.svc.Accounts.Me(r.Context(), p)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, view)
}

// Refresh issues a new token for a still-active account.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	session, err := h.svc.Accounts.Refresh(r.Context(), p)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, session)
}

// Logout revokes the presented token. Signing out without a session is a
// no-op that still succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if p, err := principal(r); err == nil {
		h.svc.Accounts.Logout(r.Context(), p, r.RemoteAddr)
	}
	NewResponseWriter(w, r).SuccessWithMessage("logged out", nil)
}

// ChangePassword replaces the caller's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req accounts.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.svc.Accounts.ChangePassword(r.Context(), p, req); err != nil {
		WriteError(w, r, err)
		return
	}
	NewResponseWriter(w, r).SuccessWithMessage("password changed", nil)
}
