// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package kv

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned by Txn.Get for an absent key.
	ErrKeyNotFound = errors.New("kv: key not found")

	// ErrConflict means the transaction lost to a concurrent writer and may be retried.
	ErrConflict = errors.New("kv: transaction conflict")

	// ErrUnavailable means the backend failed or is refusing work.
	ErrUnavailable = errors.New("kv: backend unavailable")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("kv: backend closed")

	// ErrReadOnly is returned by writes inside a View transaction.
	ErrReadOnly = errors.New("kv: write in read-only transaction")
)

// BackendError is a storage failure as opposed to a conflict or a caller error.
// It matches ErrUnavailable and trips the circuit breaker.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("kv %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUnavailable) match any BackendError.
func (e *BackendError) Is(target error) bool {
	return target == ErrUnavailable
}

// Txn is a single transaction. Keys are compared as raw bytes.
// Writes made in a transaction are visible to its own Get and Scan.
type Txn interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	// Scan calls fn for every key with the given prefix in ascending order.
	// fn may write to the transaction; the iteration works on a snapshot taken
	// before the first call.
	//
	// Only the keys Scan returns are conflict-checked on Badger: a key
	// inserted under the prefix by a concurrent commit is not detected.
	// A decision that rests on a range being empty must also point-read a
	// key that every insert writes.
	Scan(prefix []byte, fn func(key, value []byte) error) error
}

// Backend is an ordered key/value store with optimistic multi-key transactions.
//
// Update commits atomically or not at all. A commit that loses to a concurrent
// writer returns ErrConflict; the caller re-runs the whole closure. An error
// returned by fn aborts the transaction and is returned unchanged.
type Backend interface {
	View(ctx context.Context, fn func(Txn) error) error
	Update(ctx context.Context, fn func(Txn) error) error
	Close() error
	Name() string
}

// GarbageCollector is implemented by backends that reclaim space periodically.
type GarbageCollector interface {
	RunGC(ratio float64) error
}

type kvPair struct {
	key   []byte
	value []byte
}
