// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
)

// ErrAccountLocked is returned when authentication is blocked due to lockout.
// It wraps models.ErrUnauthorized; use errors.As with *LockedError for the
// remaining time.
var ErrAccountLocked = errors.New("account temporarily locked due to too many failed attempts")

// LockedError reports a lockout and how long it still lasts.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s: retry in %s", ErrAccountLocked, e.Remaining.Round(time.Second))
}

// Is matches ErrAccountLocked and models.ErrUnauthorized.
func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked || target == models.ErrUnauthorized
}

// LockoutConfig holds configuration for the account lockout system.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout. 0 disables lockout.
	MaxAttempts int
	// LockoutDuration is the base lockout period.
	LockoutDuration time.Duration
	// MaxLockoutDuration caps the doubled lockout period.
	MaxLockoutDuration time.Duration
}

// LockoutEntry tracks failed login attempts for one username.
type LockoutEntry struct {
	Subject        string
	FailedAttempts int
	LastAttempt    time.Time
	// LockoutCount is how many times the subject was locked, for backoff.
	LockoutCount int
	LockedUntil  time.Time
}

// LockoutManager handles account lockout logic in memory. State is lost
// on restart, which only shortens active lockouts.
type LockoutManager struct {
	config  LockoutConfig
	mu      sync.Mutex
	entries map[string]*LockoutEntry
	now     func() time.Time
}

// NewLockoutManager creates a new lockout manager.
func NewLockoutManager(cfg LockoutConfig) *LockoutManager {
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.MaxLockoutDuration <= 0 {
		cfg.MaxLockoutDuration = 24 * time.Hour
	}
	return &LockoutManager{
		config:  cfg,
		entries: make(map[string]*LockoutEntry),
		now:     time.Now,
	}
}

// Enabled reports whether lockout is active.
func (m *LockoutManager) Enabled() bool {
	return m != nil && m.config.MaxAttempts > 0
}

// calculateLockoutDuration doubles the base period for every previous lockout.
func calculateLockoutDuration(cfg LockoutConfig, lockoutCount int) time.Duration {
	d := cfg.LockoutDuration
	for range lockoutCount {
		d *= 2
		if d >= cfg.MaxLockoutDuration {
			return cfg.MaxLockoutDuration
		}
	}
	return d
}

// Check returns a *LockedError if subject is currently locked out.
func (m *LockoutManager) Check(_ context.Context, subject string) error {
	if !m.Enabled() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[subject]
	if !ok {
		return nil
	}
	if now := m.now(); now.Before(e.LockedUntil) {
		return &LockedError{Remaining: e.LockedUntil.Sub(now)}
	}
	return nil
}

// RecordFailure counts a failed login and returns a *LockedError when this
// attempt triggers a lockout.
func (m *LockoutManager) RecordFailure(ctx context.Context, subject string) error {
	if !m.Enabled() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[subject]
	if !ok {
		e = &LockoutEntry{Subject: subject}
		m.entries[subject] = e
	}
	if now.Before(e.LockedUntil) {
		return &LockedError{Remaining: e.LockedUntil.Sub(now)}
	}
	e.FailedAttempts++
	e.LastAttempt = now
	if e.FailedAttempts < m.config.MaxAttempts {
		return nil
	}

	d := calculateLockoutDuration(m.config, e.LockoutCount)
	e.LockedUntil = now.Add(d)
	e.LockoutCount++
	e.FailedAttempts = 0
	logging.Ctx(ctx).Warn().
		Str("username", logging.SanitizeUsername(subject)).
		Dur("duration", d).
		Int("lockout_count", e.LockoutCount).
		Msg("Account locked")
	return &LockedError{Remaining: d}
}

// RecordSuccess clears the lockout state for subject.
func (m *LockoutManager) RecordSuccess(subject string) {
	if !m.Enabled() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, subject)
}

// Cleanup drops entries that are unlocked and idle for a day. It returns
// how many were removed.
func (m *LockoutManager) Cleanup() int {
	if !m.Enabled() {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	threshold := now.Add(-24 * time.Hour)
	n := 0
	for subject, e := range m.entries {
		if !now.Before(e.LockedUntil) && e.LastAttempt.Before(threshold) {
			delete(m.entries, subject)
			n++
		}
	}
	return n
}
