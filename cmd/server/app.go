// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/assesslink/internal/accounts"
	"github.com/tomtom215/assesslink/internal/api"
	"github.com/tomtom215/assesslink/internal/auth"
	"github.com/tomtom215/assesslink/internal/authz"
	"github.com/tomtom215/assesslink/internal/catalog"
	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/events"
	"github.com/tomtom215/assesslink/internal/kv"
	"github.com/tomtom215/assesslink/internal/lifecycle"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/notify"
	"github.com/tomtom215/assesslink/internal/payment"
	"github.com/tomtom215/assesslink/internal/quota"
	"github.com/tomtom215/assesslink/internal/supervisor"
	"github.com/tomtom215/assesslink/internal/supervisor/services"
	"github.com/tomtom215/assesslink/internal/websocket"
)

// app holds every long-lived component built from one Config.
type app struct {
	cfg      *config.Config
	db       *database.DB
	bus      *events.Bus
	enforcer *authz.Enforcer
	lockout  *auth.LockoutManager
	hub      *websocket.Hub
	svc      api.Services
	server   *http.Server
}

// newApp wires storage, the event bus, the domain services and the HTTP
// handler. The caller owns the returned app and must call close.
func newApp(cfg *config.Config, db *database.DB) (*app, error) {
	bus, err := events.NewBus(events.ConfigFrom(&cfg.Events))
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	tokens, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("failed to initialize JWT manager: %w", err)
	}

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("failed to initialize authorization: %w", err)
	}

	lockout := auth.NewLockoutManager(auth.LockoutConfig{
		MaxAttempts:        cfg.Security.LoginMaxAttempts,
		LockoutDuration:    cfg.Security.LoginLockout,
		MaxLockoutDuration: 24 * time.Hour,
	})

	securityLog := logging.NewSecurityLogger()
	ledger := quota.NewLedger(db, cfg.Quota.WarningThreshold)

	accountSvc := accounts.NewService(db, ledger, auth.NewPasswordHasher(cfg.Security.BcryptCost), tokens, lockout)
	accountSvc.SetSecurityLogger(securityLog)

	hub := websocket.NewHub(cfg.Security.CORSOrigins)
	notifications := notify.NewService(db)
	notifications.SetPusher(hub)
	notifications.Register(bus)

	svc := api.Services{
		Accounts:      accountSvc,
		Catalog:       catalog.NewService(db),
		Links:         lifecycle.NewService(db, ledger, bus, lifecycle.OptionsFrom(&cfg.Server, &cfg.Links)),
		Notifications: notifications,
		Hub:           hub,
	}
	if cfg.Payment.Enabled {
		reconciler := payment.NewReconciler(db, bus, payment.OptionsFrom(cfg))
		reconciler.SetSecurityLogger(securityLog)
		svc.Payments = reconciler
	} else {
		logging.Info().Msg("Payment disabled (PAYMENT_ENABLED=false), checkout routes not mounted")
	}

	router := api.NewRouter(
		api.NewHandler(cfg, db, svc),
		auth.NewMiddleware(tokens, api.WriteError),
		authz.NewMiddleware(enforcer, api.WriteError),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)),
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return &app{
		cfg:      cfg,
		db:       db,
		bus:      bus,
		enforcer: enforcer,
		lockout:  lockout,
		hub:      hub,
		svc:      svc,
		server:   server,
	}, nil
}

// bootstrap creates the configured admin account when it does not exist.
func (a *app) bootstrap(ctx context.Context) error {
	created, err := a.svc.Accounts.EnsureAdmin(ctx, &a.cfg.Security)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}
	if created {
		logging.Info().Str("username", a.cfg.Security.AdminUsername).Msg("Admin account created")
	}
	return nil
}

// supervise registers the HTTP server, the event router and the
// maintenance jobs with tree.
func (a *app) supervise(tree *supervisor.SupervisorTree) {
	tree.AddAPIService(services.NewHTTPServerService(a.server, 10*time.Second))
	tree.AddMessagingService(services.NewRouterService(a.bus))
	tree.AddMessagingService(services.NewRouterService(a.hub).WithName("websocket-hub"))

	links := a.svc.Links
	tree.AddMaintenanceService(services.NewPeriodicService("link-sweeper", a.cfg.Links.SweepInterval,
		func(ctx context.Context) (int, error) {
			return links.ExpireDue(ctx, a.db.Now())
		}).RunOnStart())

	if a.svc.Payments != nil {
		payments, ttl := a.svc.Payments, a.cfg.Payment.OrderTTL
		tree.AddMaintenanceService(services.NewPeriodicService("order-sweeper", ttl/4,
			func(ctx context.Context) (int, error) {
				return payments.ExpireStale(ctx, ttl)
			}))
	}

	if gc, ok := a.db.Backend().(kv.GarbageCollector); ok && a.cfg.Storage.GCInterval > 0 {
		ratio := a.cfg.Storage.GCRatio
		tree.AddMaintenanceService(services.NewPeriodicService("storage-gc", a.cfg.Storage.GCInterval,
			func(context.Context) (int, error) {
				return 0, gc.RunGC(ratio)
			}))
	}

	lockout := a.lockout
	tree.AddMaintenanceService(services.NewPeriodicService("lockout-cleanup", 5*time.Minute,
		func(context.Context) (int, error) {
			return lockout.Cleanup(), nil
		}))
}

// close releases the components newApp created. The database is closed by
// the caller that opened it.
func (a *app) close() {
	if err := a.bus.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event bus")
	}
	a.enforcer.Close()
}
