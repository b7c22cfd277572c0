// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package kv

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
)

type memEntry struct {
	value   []byte
	version uint64
}

type memWrite struct {
	value   []byte
	deleted bool
}

// MemoryBackend is a process-local Backend for tests and development.
//
// Each transaction reads from an immutable snapshot of the map. Commit
// validates the read set (point reads by version, scanned prefixes by
// membership and version) against the live map and fails with ErrConflict if
// anything it observed has changed. Published maps are never mutated; a
// commit installs a fresh copy.
type MemoryBackend struct {
	mu     sync.Mutex
	data   map[string]memEntry
	clock  uint64
	closed bool
}

// NewMemory returns an empty MemoryBackend.
func NewMemory() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]memEntry)}
}

// Name implements Backend.
func (b *MemoryBackend) Name() string {
	return "memory"
}

func (b *MemoryBackend) begin(ctx context.Context, readOnly bool) (*memTxn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	return &memTxn{
		snap:     b.data,
		start:    b.clock,
		readOnly: readOnly,
		reads:    make(map[string]uint64),
		writes:   make(map[string]memWrite),
	}, nil
}

// View implements Backend.
func (b *MemoryBackend) View(ctx context.Context, fn func(Txn) error) error {
	txn, err := b.begin(ctx, true)
	if err != nil {
		return err
	}
	return fn(txn)
}

// Update implements Backend.
func (b *MemoryBackend) Update(ctx context.Context, fn func(Txn) error) error {
	txn, err := b.begin(ctx, false)
	if err != nil {
		return err
	}
	if err := fn(txn); err != nil {
		return err
	}
	return b.commit(txn)
}

func (b *MemoryBackend) commit(t *memTxn) error {
	if len(t.writes) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	if !t.valid(b.data) {
		return ErrConflict
	}

	next := make(map[string]memEntry, len(b.data)+len(t.writes))
	for k, e := range b.data {
		next[k] = e
	}
	b.clock++
	for k, w := range t.writes {
		if w.deleted {
			delete(next, k)
			continue
		}
		next[k] = memEntry{value: w.value, version: b.clock}
	}
	b.data = next
	return nil
}

// Len returns the number of live keys.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Close implements Backend.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

type memTxn struct {
	snap     map[string]memEntry
	start    uint64
	readOnly bool

	reads    map[string]uint64
	prefixes []string
	writes   map[string]memWrite
}

// valid reports whether everything t observed is unchanged in live.
func (t *memTxn) valid(live map[string]memEntry) bool {
	for k, seen := range t.reads {
		if live[k].version != seen {
			return false
		}
	}
	for _, prefix := range t.prefixes {
		for k, e := range live {
			if strings.HasPrefix(k, prefix) && e.version > t.start {
				return false
			}
		}
		for k := range t.snap {
			if !strings.HasPrefix(k, prefix) {
				continue
			}
			if _, ok := live[k]; !ok {
				return false
			}
		}
	}
	return true
}

func (t *memTxn) Get(key []byte) ([]byte, error) {
	k := string(key)
	if w, ok := t.writes[k]; ok {
		if w.deleted {
			return nil, ErrKeyNotFound
		}
		return bytes.Clone(w.value), nil
	}
	e, ok := t.snap[k]
	t.reads[k] = e.version
	if !ok {
		return nil, ErrKeyNotFound
	}
	return bytes.Clone(e.value), nil
}

func (t *memTxn) Set(key, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.writes[string(key)] = memWrite{value: bytes.Clone(value)}
	return nil
}

func (t *memTxn) Delete(key []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.writes[string(key)] = memWrite{deleted: true}
	return nil
}

func (t *memTxn) Scan(prefix []byte, fn func(key, value []byte) error) error {
	p := string(prefix)
	t.prefixes = append(t.prefixes, p)

	merged := make(map[string][]byte)
	for k, e := range t.snap {
		if strings.HasPrefix(k, p) {
			merged[k] = e.value
		}
	}
	for k, w := range t.writes {
		if !strings.HasPrefix(k, p) {
			continue
		}
		if w.deleted {
			delete(merged, k)
		} else {
			merged[k] = w.value
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := fn([]byte(k), bytes.Clone(merged[k])); err != nil {
			return err
		}
	}
	return nil
}
