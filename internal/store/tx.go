// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tomtom215/assesslink/internal/kv"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/metrics"
)

// Tx is one attempt of a store transaction.
type Tx struct {
	ctx      context.Context
	txn      kv.Txn
	readOnly bool
	touched  map[string]struct{}
	onCommit []func()
}

// Context returns the context the transaction was started with.
func (t *Tx) Context() context.Context {
	return t.ctx
}

// ReadOnly reports whether the transaction was started by View.
func (t *Tx) ReadOnly() bool {
	return t.readOnly
}

// OnCommit registers fn to run after the transaction commits. Callbacks
// registered by an attempt that is later retried or aborted never run.
func (t *Tx) OnCommit(fn func()) {
	t.onCommit = append(t.onCommit, fn)
}

func (t *Tx) touch(ns string) {
	if t.touched == nil {
		t.touched = make(map[string]struct{})
	}
	t.touched[ns] = struct{}{}
}

// RetryPolicy bounds conflict retries in Update.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      8,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     250 * time.Millisecond,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = 0
	if eb.InitialInterval <= 0 {
		eb.InitialInterval = 5 * time.Millisecond
	}
	if eb.MaxInterval < eb.InitialInterval {
		eb.MaxInterval = eb.InitialInterval
	}
	eb.Reset()

	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

// Update runs fn in a read-write transaction, re-running it on commit
// conflicts according to policy. Errors returned by fn abort the transaction
// and are returned unchanged. When every attempt conflicts the result wraps
// ErrConflict.
func Update(ctx context.Context, backend kv.Backend, policy RetryPolicy, fn func(*Tx) error) error {
	start := time.Now()
	attempts := 0
	var committed *Tx

	op := func() error {
		attempts++
		var attempt *Tx
		err := backend.Update(ctx, func(txn kv.Txn) error {
			attempt = &Tx{ctx: ctx, txn: txn}
			return fn(attempt)
		})
		if err == nil {
			committed = attempt
			return nil
		}
		if errors.Is(err, kv.ErrConflict) {
			if attempt != nil {
				for ns := range attempt.touched {
					metrics.RecordStoreConflict(ns)
				}
			}
			logging.Debug().Int("attempt", attempts).Msg("store: commit conflict, retrying")
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(op, policy.backOff(ctx))
	switch {
	case err == nil:
		metrics.RecordStoreTxn("update", "ok", time.Since(start))
	case errors.Is(err, kv.ErrConflict):
		metrics.RecordStoreTxn("update", "conflict", time.Since(start))
		return fmt.Errorf("store: gave up after %d attempts: %w", attempts, ErrConflict)
	default:
		metrics.RecordStoreTxn("update", "error", time.Since(start))
		return err
	}

	for _, cb := range committed.onCommit {
		cb()
	}
	return nil
}

// View runs fn in a read-only snapshot.
func View(ctx context.Context, backend kv.Backend, fn func(*Tx) error) error {
	start := time.Now()
	err := backend.View(ctx, func(txn kv.Txn) error {
		return fn(&Tx{ctx: ctx, txn: txn, readOnly: true})
	})
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.RecordStoreTxn("view", result, time.Since(start))
	return err
}
