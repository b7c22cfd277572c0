// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/kv"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/store"
)

// DB holds the backend and the repositories built on it.
type DB struct {
	backend kv.Backend
	policy  store.RetryPolicy
	now     func() time.Time

	Accounts       *AccountRepo
	Links          *LinkRepo
	Questionnaires *QuestionnaireRepo
	Notifications  *NotificationRepo
	Orders         *OrderRepo
}

// New wires the repositories onto backend.
func New(backend kv.Backend, policy store.RetryPolicy) *DB {
	db := &DB{
		backend: backend,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
	}
	db.Accounts = newAccountRepo(db)
	db.Links = newLinkRepo(db)
	db.Questionnaires = newQuestionnaireRepo(db)
	db.Notifications = newNotificationRepo(db)
	db.Orders = newOrderRepo(db)
	return db
}

// Open opens the configured backend and returns a DB over it.
func Open(cfg *config.StorageConfig) (*DB, error) {
	backend, err := kv.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	policy := store.RetryPolicy{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
	}
	logging.Info().
		Str("backend", backend.Name()).
		Int("max_retries", policy.MaxRetries).
		Msg("Database opened")
	return New(backend, policy), nil
}

// NewMemory returns a DB on a fresh in-memory backend. Used by tests and the
// memory storage mode.
func NewMemory() *DB {
	return New(kv.NewMemory(), store.DefaultRetryPolicy())
}

// Backend returns the underlying key/value backend.
func (db *DB) Backend() kv.Backend {
	return db.backend
}

// Close closes the backend.
func (db *DB) Close() error {
	return db.backend.Close()
}

// SetClock replaces the timestamp source. Tests only.
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}

// Now returns the current time from the DB clock.
func (db *DB) Now() time.Time {
	return db.now()
}

// Update runs fn in a conflict-retried read-write transaction.
func (db *DB) Update(ctx context.Context, fn func(tx *store.Tx) error) error {
	return translate(store.Update(ctx, db.backend, db.policy, fn))
}

// View runs fn in a read-only snapshot.
func (db *DB) View(ctx context.Context, fn func(tx *store.Tx) error) error {
	return translate(store.View(ctx, db.backend, fn))
}

// Ping opens and closes an empty read transaction.
func (db *DB) Ping(ctx context.Context) error {
	return db.View(ctx, func(*store.Tx) error { return nil })
}
