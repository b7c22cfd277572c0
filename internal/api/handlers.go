// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"time"

	"github.com/tomtom215/assesslink/internal/accounts"
	"github.com/tomtom215/assesslink/internal/catalog"
	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/lifecycle"
	"github.com/tomtom215/assesslink/internal/notify"
	"github.com/tomtom215/assesslink/internal/payment"
	"github.com/tomtom215/assesslink/internal/websocket"
)

// Services bundles the domain services the handlers call.
type Services struct {
	Accounts      *accounts.Service
	Catalog       *catalog.Service
	Links         *lifecycle.Service
	Notifications *notify.Service
	// Payments is nil when payment is disabled; the payment routes are
	// then not mounted.
	Payments *payment.Reconciler
	// Hub serves the live notification stream; nil answers 503.
	Hub *websocket.Hub
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_health.go: liveness, readiness
//   - handlers_auth.go: register, login, profile, password
//   - handlers_users.go: admin account management
//   - handlers_questionnaires.go: catalog import and publishing
//   - handlers_links.go: link issuance, management, dashboard, test takers
//   - handlers_notifications.go: inbox and live stream
//   - handlers_payment.go: checkout, gateway callback, order polling
//   - handlers_admin.go: index verification and repair
type Handler struct {
	db        *database.DB
	config    *config.Config
	svc       Services
	startTime time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, db *database.DB, svc Services) *Handler {
	return &Handler{
		db:        db,
		config:    cfg,
		svc:       svc,
		startTime: time.Now(),
	}
}
