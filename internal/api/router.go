// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/assesslink/internal/auth"
	"github.com/tomtom215/assesslink/internal/authz"
	"github.com/tomtom215/assesslink/internal/middleware"
)

// Router wires handlers and middleware into a chi route tree.
type Router struct {
	handler *Handler
	authn   *auth.Middleware
	authz   *authz.Middleware
	chi     *ChiMiddleware
}

// NewRouter creates a router. authn and authz must share WriteError as
// their error writer so every rejection uses the JSON envelope.
func NewRouter(handler *Handler, authn *auth.Middleware, authzMW *authz.Middleware, chiMW *ChiMiddleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, authn: authn, authz: authzMW, chi: chiMW}
}

// Setup builds the route tree.
//
// Authorization is path based: authz.Authorize runs once for every request
// against the embedded casbin policy, so route groups below only add rate
// limits.
func (rt *Router) Setup() http.Handler {
	h := rt.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(APISecurityHeaders())
	r.Use(rt.chi.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(rt.chi.RateLimit())
	r.Use(rt.authn.Optional)
	r.Use(rt.authz.Authorize)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Use(rt.chi.RateLimitHealth())
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(rt.chi.RateLimitRegister()).Post("/register", h.Register)
			r.With(rt.chi.RateLimitLogin()).Post("/login", h.Login)
			r.Get("/me", h.Me)
			r.Post("/refresh", h.Refresh)
			r.Post("/logout", h.Logout)
			r.Post("/change-password", h.ChangePassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/batch-delete", h.BatchDeleteUsers)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetUser)
				r.Put("/", h.UpdateUser)
				r.Delete("/", h.DeleteUser)
				r.Patch("/status", h.SetUserStatus)
				r.Post("/quota", h.GrantQuota)
				r.Post("/reset-password", h.ResetUserPassword)
			})
		})

		r.Route("/questionnaires", func(r chi.Router) {
			r.Get("/available", h.AvailableQuestionnaires)
			r.Post("/import", h.ImportQuestionnaire)
			r.Get("/", h.ListQuestionnaires)
			r.Route("/{type}", func(r chi.Router) {
				r.Get("/", h.GetQuestionnaire)
				r.Delete("/", h.DeleteQuestionnaire)
				r.Patch("/publish-status", h.SetQuestionnairePublished)
				r.Patch("/rename", h.RenameQuestionnaire)
			})
		})

		r.Route("/links", func(r chi.Router) {
			r.Post("/generate", h.GenerateLinks)
			r.Get("/", h.ListLinks)
			r.Patch("/batch-update-status", h.BatchSetLinkStatus)
			r.Post("/batch-delete", h.BatchDeleteLinks)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetLink)
				r.Delete("/", h.DeleteLink)
				r.Patch("/status", h.SetLinkStatus)
				r.Get("/stats", h.LinkStats)
				r.Post("/force-status", h.ForceLinkStatus)
			})
		})

		r.Route("/test/{id}", func(r chi.Router) {
			r.Get("/", h.OpenTest)
			r.Post("/submit", h.SubmitTest)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", h.DashboardStats)
			r.Get("/chart", h.DashboardChart)
			r.Get("/realtime", h.DashboardRealtime)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Get("/unread-count", h.UnreadCount)
			r.Get("/stream", h.NotificationStream)
			r.Patch("/mark-read", h.MarkNotificationsRead)
			r.Post("/mark-read", h.MarkNotificationsRead)
			r.Post("/mark-all-read", h.MarkAllNotificationsRead)
			r.Post("/batch-delete", h.BatchDeleteNotifications)
			r.Patch("/{id}/read", h.MarkNotificationRead)
			r.Delete("/{id}", h.DeleteNotification)
		})

		if h.svc.Payments != nil {
			r.Route("/payment", func(r chi.Router) {
				r.Post("/create", h.CreatePayment)
				r.With(rt.chi.RateLimitNotify()).Get("/notify", h.PaymentNotify)
				r.With(rt.chi.RateLimitNotify()).Post("/notify", h.PaymentNotify)
				r.Get("/order-status", h.OrderStatus)
			})
		}

		r.Route("/admin/indexes", func(r chi.Router) {
			r.Get("/verify", h.VerifyIndexes)
			r.Post("/repair", h.RepairIndexes)
		})
	})

	return r
}
