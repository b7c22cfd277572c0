// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/assesslink/internal/logging"
)

func TestNewPeriodicService_DefaultInterval(t *testing.T) {
	svc := NewPeriodicService("sweeper", 0, func(context.Context) (int, error) { return 0, nil })
	if svc.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", svc.interval)
	}
	if svc.String() != "sweeper" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestPeriodicService_RunsUntilCanceled(t *testing.T) {
	var runs atomic.Int32
	svc := NewPeriodicService("sweeper", 5*time.Millisecond, func(context.Context) (int, error) {
		n := runs.Add(1)
		if n == 2 {
			return 0, errors.New("transient")
		}
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("job ran %d times, want at least 3", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestPeriodicService_RunOnStart(t *testing.T) {
	ran := make(chan struct{}, 1)
	svc := NewPeriodicService("gc", time.Hour, func(context.Context) (int, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return 0, nil
	}).RunOnStart()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestPeriodicService_JobContextIsTraced(t *testing.T) {
	ids := make(chan string, 4)
	svc := NewPeriodicService("sweeper", time.Hour, func(ctx context.Context) (int, error) {
		ids <- logging.CorrelationIDFromContext(ctx)
		return 0, nil
	})

	svc.runOnce(context.Background())
	svc.runOnce(context.Background())

	first, second := <-ids, <-ids
	if len(first) != 8 || len(second) != 8 {
		t.Fatalf("correlation ids = %q, %q, want 8 chars each", first, second)
	}
	if first == second {
		t.Errorf("runs share correlation id %q", first)
	}
}
