// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/metrics"
)

// BreakerSettings configures Guarded.
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// Timeout is how long the breaker stays open before a half-open trial request.
	Timeout time.Duration
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
}

// Guarded wraps a Backend with a circuit breaker. Only BackendError counts as
// a failure; conflicts, caller errors and context cancellation pass through
// without tripping it. While open, calls fail fast with ErrUnavailable.
type Guarded struct {
	inner Backend
	cb    *gobreaker.CircuitBreaker[struct{}]
}

// NewGuarded wraps inner with a breaker.
func NewGuarded(inner Backend, s BreakerSettings) *Guarded {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}

	name := "kv-" + inner.Name()
	metrics.SetBreakerState(stateToFloat(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= s.ConsecutiveFailures
			if shouldTrip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening backend circuit")
			}
			return shouldTrip
		},
		IsSuccessful: func(err error) bool {
			var be *BackendError
			return err == nil || !errors.As(err, &be)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.SetBreakerState(stateToFloat(to))
		},
	})

	return &Guarded{inner: inner, cb: cb}
}

// Name implements Backend.
func (g *Guarded) Name() string {
	return g.inner.Name()
}

// View implements Backend.
func (g *Guarded) View(ctx context.Context, fn func(Txn) error) error {
	return g.execute(func() error { return g.inner.View(ctx, fn) })
}

// Update implements Backend.
func (g *Guarded) Update(ctx context.Context, fn func(Txn) error) error {
	return g.execute(func() error { return g.inner.Update(ctx, fn) })
}

// Close implements Backend.
func (g *Guarded) Close() error {
	return g.inner.Close()
}

// RunGC forwards to the wrapped backend when it supports GC.
func (g *Guarded) RunGC(ratio float64) error {
	if gc, ok := g.inner.(GarbageCollector); ok {
		return gc.RunGC(ratio)
	}
	return nil
}

// State reports the breaker state for health checks.
func (g *Guarded) State() string {
	return g.cb.State().String()
}

func (g *Guarded) execute(fn func() error) error {
	_, err := g.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
