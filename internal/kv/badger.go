// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/tomtom215/assesslink/internal/logging"
)

// BadgerOptions configures a BadgerBackend.
type BadgerOptions struct {
	Path       string
	InMemory   bool
	SyncWrites bool
	// CloseTimeout bounds Close; zero means 30s.
	CloseTimeout time.Duration
}

// BadgerBackend stores records in BadgerDB. Transactions use Badger's
// serializable snapshot isolation; a lost race surfaces as ErrConflict.
type BadgerBackend struct {
	db   *badger.DB
	opts BadgerOptions

	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) a Badger database.
func OpenBadger(o BadgerOptions) (*BadgerBackend, error) {
	var opts badger.Options
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if o.Path == "" {
			return nil, errors.New("badger: path is required")
		}
		opts = badger.DefaultOptions(o.Path)
	}
	opts.SyncWrites = o.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", o.Path).
		Bool("in_memory", o.InMemory).
		Bool("sync_writes", o.SyncWrites).
		Msg("Badger backend opened")

	return &BadgerBackend{db: db, opts: o}, nil
}

// Name implements Backend.
func (b *BadgerBackend) Name() string {
	return "badger"
}

func (b *BadgerBackend) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

// View runs fn in a read-only snapshot.
func (b *BadgerBackend) View(ctx context.Context, fn func(Txn) error) error {
	if err := b.checkOpen(ctx); err != nil {
		return err
	}
	var fnErr error
	err := b.db.View(func(txn *badger.Txn) error {
		fnErr = fn(&badgerTxn{txn: txn, readOnly: true})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return &BackendError{Op: "view", Err: err}
	}
	return nil
}

// Update runs fn in a read-write transaction and commits it.
func (b *BadgerBackend) Update(ctx context.Context, fn func(Txn) error) error {
	if err := b.checkOpen(ctx); err != nil {
		return err
	}
	var fnErr error
	err := b.db.Update(func(txn *badger.Txn) error {
		fnErr = fn(&badgerTxn{txn: txn})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return ErrConflict
		}
		return &BackendError{Op: "commit", Err: err}
	}
	return nil
}

// RunGC runs value log garbage collection until nothing is left to rewrite.
func (b *BadgerBackend) RunGC(ratio float64) error {
	if b.opts.InMemory {
		return nil
	}
	if err := b.checkOpen(context.Background()); err != nil {
		return err
	}
	for {
		err := b.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close shuts the database down, giving up after the configured timeout.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	timeout := b.opts.CloseTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	b.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- b.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("Badger backend closed")
		return nil
	case <-time.After(timeout):
		logging.Warn().Dur("timeout", timeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", timeout)
	}
}

type badgerTxn struct {
	txn      *badger.Txn
	readOnly bool
}

func (t *badgerTxn) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, &BackendError{Op: "get", Err: err}
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, &BackendError{Op: "get", Err: err}
	}
	return val, nil
}

func (t *badgerTxn) Set(key, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if err := t.txn.Set(key, value); err != nil {
		return &BackendError{Op: "set", Err: err}
	}
	return nil
}

func (t *badgerTxn) Delete(key []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if err := t.txn.Delete(key); err != nil {
		return &BackendError{Op: "delete", Err: err}
	}
	return nil
}

// Scan collects matching pairs before calling fn: a read-write Badger
// transaction allows only one open iterator, and fn may itself scan or write.
func (t *badgerTxn) Scan(prefix []byte, fn func(key, value []byte) error) error {
	var pairs []kvPair
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			it.Close()
			return &BackendError{Op: "scan", Err: err}
		}
		pairs = append(pairs, kvPair{key: item.KeyCopy(nil), value: val})
	}
	it.Close()

	for _, p := range pairs {
		if err := fn(p.key, p.value); err != nil {
			return err
		}
	}
	return nil
}
