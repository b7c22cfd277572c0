// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/notify"
)

// ListNotifications returns a page of the caller's inbox, filtered by
// ?type= and ?read=.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	read, err := getBoolParam(r, "read")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	listing, err := h.svc.Notifications.List(r.Context(), p, notify.Filter{
		Type:     models.NotificationType(r.URL.Query().Get("type")),
		Read:     read,
		Page:     getIntParam(r, "page", 1),
		PageSize: getIntParam(r, "pageSize", 20),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]any{
		"notifications": listing.Items,
		"total":         listing.Total,
		"unreadCount":   listing.UnreadCount,
		"page":          listing.Page.Page,
		"pageSize":      listing.PageSize,
	})
}

// UnreadCount returns the caller's unread total.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	n, err := h.svc.Notifications.UnreadCount(r.Context(), p)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]int{"count": n})
}

// MarkNotificationRead marks one notification read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	n, err := h.svc.Notifications.MarkRead(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, n)
}

// MarkNotificationsRead marks the listed notifications read. Ids that are
// unknown or belong to someone else are skipped.
func (h *Handler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req NotificationIDsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	ids, err := req.List()
	if err != nil {
		WriteError(w, r, err)
		return
	}
	n, err := h.svc.Notifications.MarkManyRead(r.Context(), p, ids)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]int{"markedCount": n})
}

// MarkAllNotificationsRead clears the caller's unread count.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	n, err := h.svc.Notifications.MarkAllRead(r.Context(), p)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]int{"markedCount": n})
}

// DeleteNotification removes one notification.
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.svc.Notifications.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	NewResponseWriter(w, r).SuccessWithMessage("deleted", nil)
}

// BatchDeleteNotifications removes the listed notifications.
func (h *Handler) BatchDeleteNotifications(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req NotificationIDsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	ids, err := req.List()
	if err != nil {
		WriteError(w, r, err)
		return
	}
	n, err := h.svc.Notifications.BatchDelete(r.Context(), p, ids)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]int{"deletedCount": n})
}

// NotificationStream upgrades to a WebSocket that receives the caller's new
// notifications as they are created.
func (h *Handler) NotificationStream(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if h.svc.Hub == nil {
		NewResponseWriter(w, r).ServiceUnavailable("notification stream unavailable")
		return
	}
	if err := h.svc.Hub.Upgrade(w, r, p.UserID); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
	}
}
