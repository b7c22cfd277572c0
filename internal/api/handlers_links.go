// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/assesslink/internal/lifecycle"
	"github.com/tomtom215/assesslink/internal/models"
)

// GenerateLinks charges quota and mints links.
func (h *Handler) GenerateLinks(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req lifecycle.IssueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	res, err := h.svc.Links.Issue(r.Context(), p, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteCreated(w, r, res)
}

// ListLinks returns a page of the caller's links. Admins may pass owner to
// look at another account.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	q := r.URL.Query()
	page, err := h.svc.Links.List(r.Context(), p, lifecycle.Filter{
		Status:            models.LinkStatus(q.Get("status")),
		QuestionnaireType: q.Get("questionnaireType"),
		Owner:             q.Get("owner"),
		Page:              getIntParam(r, "page", 1),
		PageSize:          getIntParam(r, "pageSize", 20),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]any{
		"links":    page.Items,
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}

// GetLink returns one link.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	l, err := h.svc.Links.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, l)
}

// SetLinkStatus applies a manual status change.
func (h *Handler) SetLinkStatus(w http.ResponseWriter, r *http.Request) {
	h.changeLinkStatus(w, r, h.svc.Links.SetStatus)
}

// ForceLinkStatus is the admin override that bypasses the transition
// table.
func (h *Handler) ForceLinkStatus(w http.ResponseWriter, r *http.Request) {
	h.changeLinkStatus(w, r, h.svc.Links.ForceStatus)
}

type statusChanger func(ctx context.Context, p models.Principal, id string, status models.LinkStatus) (*models.Link, error)

func (h *Handler) changeLinkStatus(w http.ResponseWriter, r *http.Request, change statusChanger) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req LinkStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	l, err := change(r.Context(), p, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, l)
}

// DeleteLink removes a link. Quota is not refunded.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.svc.Links.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	NewResponseWriter(w, r).SuccessWithMessage("deleted", nil)
}

// BatchSetLinkStatus changes the status of several links independently.
func (h *Handler) BatchSetLinkStatus(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req BatchLinkStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	res, err := h.svc.Links.BatchSetStatus(r.Context(), p, req.LinkIDs, req.Status)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, res)
}

// BatchDeleteLinks removes several links independently.
func (h *Handler) BatchDeleteLinks(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req LinkIDsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	res, err := h.svc.Links.BatchDelete(r.Context(), p, req.LinkIDs)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, res)
}

// LinkStats returns usage of one link.
func (h *Handler) LinkStats(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	st, err := h.svc.Links.Stats(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, st)
}

// DashboardStats returns the caller's landing-page summary.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	d, err := h.svc.Links.Dashboard(r.Context(), p)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, d)
}

// DashboardChart returns daily link activity for ?period=7d|15d|30d.
func (h *Handler) DashboardChart(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	c, err := h.svc.Links.Chart(r.Context(), p, r.URL.Query().Get("period"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, c)
}

// DashboardRealtime is the polling view of quota and today's redemptions.
func (h *Handler) DashboardRealtime(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	rt, err := h.svc.Links.Realtime(r.Context(), p)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, rt)
}

// OpenTest resolves a link for a test taker. Public.
func (h *Handler) OpenTest(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Links.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, session)
}

// SubmitTest redeems a link against a finished report. Public; the link id
// is the credential.
func (h *Handler) SubmitTest(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	l, err := h.svc.Links.Redeem(r.Context(), chi.URLParam(r, "id"), req.ReportID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]any{
		"linkId":   l.ID,
		"status":   l.Status,
		"reportId": l.ReportID,
		"usedAt":   l.UsedAt,
	})
}
