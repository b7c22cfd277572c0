// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/assesslink/internal/kv"
	"github.com/tomtom215/assesslink/internal/logging"
)

// Index derives a secondary key from a record. An empty key means the record
// is not indexed under it.
type Index[T any] struct {
	Name string
	Key  func(*T) string
	// Normalize is applied to both stored and looked-up unique values.
	Normalize func(string) string
}

func (ix Index[T]) value(rec *T) string {
	v := ix.Key(rec)
	if v != "" && ix.Normalize != nil {
		v = ix.Normalize(v)
	}
	return v
}

// Schema describes how a record type is stored.
type Schema[T any] struct {
	Namespace string
	ID        func(*T) string
	SetID     func(*T, string)
	// NewID generates ids for records created without one. Optional.
	NewID   func() string
	Owners  []Index[T]
	Uniques []Index[T]
}

// Collection stores records of type T under one namespace.
type Collection[T any] struct {
	schema Schema[T]
	log    zerolog.Logger
}

// NewCollection returns a collection for schema.
func NewCollection[T any](schema Schema[T]) *Collection[T] {
	if schema.Namespace == "" || strings.Contains(schema.Namespace, sep) {
		panic(fmt.Sprintf("store: invalid namespace %q", schema.Namespace))
	}
	if schema.ID == nil {
		panic("store: schema " + schema.Namespace + " has no ID func")
	}
	return &Collection[T]{
		schema: schema,
		log:    logging.WithComponent("store").With().Str("namespace", schema.Namespace).Logger(),
	}
}

// Namespace returns the collection's key namespace.
func (c *Collection[T]) Namespace() string {
	return c.schema.Namespace
}

func (c *Collection[T]) decode(id string, raw []byte) (*T, error) {
	rec := new(T)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrCorrupt, c.schema.Namespace, id, err)
	}
	return rec, nil
}

func (c *Collection[T]) load(tx *Tx, id string) (*T, error) {
	if id == "" || strings.Contains(id, sep) {
		return nil, ErrNotFound
	}
	raw, err := tx.txn.Get(recordKey(c.schema.Namespace, id))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c.decode(id, raw)
}

// Get returns the record with id, or ErrNotFound.
func (c *Collection[T]) Get(tx *Tx, id string) (*T, error) {
	return c.load(tx, id)
}

// Exists reports whether a record with id is stored.
func (c *Collection[T]) Exists(tx *Tx, id string) (bool, error) {
	if id == "" || strings.Contains(id, sep) {
		return false, nil
	}
	_, err := tx.txn.Get(recordKey(c.schema.Namespace, id))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List returns every decodable record in key order. Undecodable values are
// skipped and logged.
func (c *Collection[T]) List(tx *Tx) ([]*T, error) {
	var out []*T
	prefix := recordPrefix(c.schema.Namespace)
	err := tx.txn.Scan(prefix, func(key, value []byte) error {
		id := string(key[len(prefix):])
		rec, err := c.decode(id, value)
		if err != nil {
			c.log.Warn().Err(err).Str("id", id).Msg("Skipping undecodable record")
			return nil
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// Count returns the number of stored records.
func (c *Collection[T]) Count(tx *Tx) (int, error) {
	n := 0
	err := tx.txn.Scan(recordPrefix(c.schema.Namespace), func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

func (c *Collection[T]) ownerIndex(name string) (Index[T], error) {
	for _, ix := range c.schema.Owners {
		if ix.Name == name {
			return ix, nil
		}
	}
	return Index[T]{}, fmt.Errorf("%w: %s.%s", ErrUnknownIndex, c.schema.Namespace, name)
}

func (c *Collection[T]) uniqueIndex(name string) (Index[T], error) {
	for _, ix := range c.schema.Uniques {
		if ix.Name == name {
			return ix, nil
		}
	}
	return Index[T]{}, fmt.Errorf("%w: %s.%s", ErrUnknownIndex, c.schema.Namespace, name)
}

// ListBy returns the records whose owner index entry matches owner. Entries
// pointing at missing records are skipped.
func (c *Collection[T]) ListBy(tx *Tx, index, owner string) ([]*T, error) {
	if _, err := c.ownerIndex(index); err != nil {
		return nil, err
	}
	if owner == "" {
		return nil, nil
	}
	if _, err := tx.txn.Get(ownerGuardKey(c.schema.Namespace, index, owner)); err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		return nil, err
	}
	prefix := ownerPrefix(c.schema.Namespace, index, owner)
	var ids []string
	if err := tx.txn.Scan(prefix, func(key, _ []byte) error {
		ids = append(ids, string(key[len(prefix):]))
		return nil
	}); err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		rec, err := c.load(tx, id)
		if errors.Is(err, ErrNotFound) {
			c.log.Debug().Str("index", index).Str("id", id).Msg("Skipping dangling owner entry")
			continue
		}
		if errors.Is(err, ErrCorrupt) {
			c.log.Warn().Err(err).Msg("Skipping undecodable record")
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// FindUnique returns the record holding value in the unique index, or
// ErrNotFound.
func (c *Collection[T]) FindUnique(tx *Tx, index, value string) (*T, error) {
	ix, err := c.uniqueIndex(index)
	if err != nil {
		return nil, err
	}
	if ix.Normalize != nil {
		value = ix.Normalize(value)
	}
	if value == "" {
		return nil, ErrNotFound
	}
	raw, err := tx.txn.Get(uniqueKey(c.schema.Namespace, index, value))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c.load(tx, string(raw))
}

func (c *Collection[T]) checkUnique(tx *Tx, index, value, selfID string) error {
	raw, err := tx.txn.Get(uniqueKey(c.schema.Namespace, index, value))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	holder := string(raw)
	if holder == selfID {
		return nil
	}
	// An entry whose record is gone does not block.
	ok, err := c.Exists(tx, holder)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return &DuplicateError{Namespace: c.schema.Namespace, Index: index, Value: value}
}

func (c *Collection[T]) put(tx *Tx, id string, rec *T) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode %s/%s: %w", c.schema.Namespace, id, err)
	}
	return tx.txn.Set(recordKey(c.schema.Namespace, id), raw)
}

// Create stores rec and its index entries. A missing id is generated when the
// schema has NewID. Taken primary or unique keys fail with a DuplicateError.
func (c *Collection[T]) Create(tx *Tx, rec *T) error {
	id := c.schema.ID(rec)
	if id == "" && c.schema.NewID != nil && c.schema.SetID != nil {
		id = c.schema.NewID()
		c.schema.SetID(rec, id)
	}
	if id == "" || strings.Contains(id, sep) {
		return fmt.Errorf("store: invalid %s id %q", c.schema.Namespace, id)
	}
	tx.touch(c.schema.Namespace)

	exists, err := c.Exists(tx, id)
	if err != nil {
		return err
	}
	if exists {
		return &DuplicateError{Namespace: c.schema.Namespace, Index: "id", Value: id}
	}

	for _, ix := range c.schema.Uniques {
		v := ix.value(rec)
		if v == "" {
			continue
		}
		if err := c.checkUnique(tx, ix.Name, v, id); err != nil {
			return err
		}
	}

	if err := c.put(tx, id, rec); err != nil {
		return err
	}
	for _, ix := range c.schema.Owners {
		if owner := ix.value(rec); owner != "" {
			if err := c.addOwnerEntry(tx, ix.Name, owner, id); err != nil {
				return err
			}
		}
	}
	for _, ix := range c.schema.Uniques {
		if v := ix.value(rec); v != "" {
			if err := tx.txn.Set(uniqueKey(c.schema.Namespace, ix.Name, v), []byte(id)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Update applies mutate to a copy of the stored record and writes it back,
// moving any index entries whose values changed. The id cannot change.
func (c *Collection[T]) Update(tx *Tx, id string, mutate func(*T) error) (*T, error) {
	prev, err := c.load(tx, id)
	if err != nil {
		return nil, err
	}
	next, err := c.load(tx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(next); err != nil {
		return nil, err
	}
	if c.schema.ID(next) != id {
		return nil, ErrIDChanged
	}
	tx.touch(c.schema.Namespace)

	for _, ix := range c.schema.Uniques {
		was, now := ix.value(prev), ix.value(next)
		if was == now || now == "" {
			continue
		}
		if err := c.checkUnique(tx, ix.Name, now, id); err != nil {
			return nil, err
		}
	}

	if err := c.put(tx, id, next); err != nil {
		return nil, err
	}
	for _, ix := range c.schema.Owners {
		was, now := ix.value(prev), ix.value(next)
		if was == now {
			continue
		}
		if was != "" {
			if err := tx.txn.Delete(ownerKey(c.schema.Namespace, ix.Name, was, id)); err != nil {
				return nil, err
			}
		}
		if now != "" {
			if err := c.addOwnerEntry(tx, ix.Name, now, id); err != nil {
				return nil, err
			}
		}
	}
	for _, ix := range c.schema.Uniques {
		was, now := ix.value(prev), ix.value(next)
		if was == now {
			continue
		}
		if was != "" {
			if err := c.releaseUnique(tx, ix.Name, was, id); err != nil {
				return nil, err
			}
		}
		if now != "" {
			if err := tx.txn.Set(uniqueKey(c.schema.Namespace, ix.Name, now), []byte(id)); err != nil {
				return nil, err
			}
		}
	}
	return next, nil
}

func (c *Collection[T]) addOwnerEntry(tx *Tx, index, owner, id string) error {
	if err := tx.txn.Set(ownerKey(c.schema.Namespace, index, owner, id), nil); err != nil {
		return err
	}
	return tx.txn.Set(ownerGuardKey(c.schema.Namespace, index, owner), nil)
}

// releaseUnique deletes a unique entry only if it still points at id.
func (c *Collection[T]) releaseUnique(tx *Tx, index, value, id string) error {
	key := uniqueKey(c.schema.Namespace, index, value)
	raw, err := tx.txn.Get(key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if string(raw) != id {
		return nil
	}
	return tx.txn.Delete(key)
}

// Delete removes the record and its index entries.
func (c *Collection[T]) Delete(tx *Tx, id string) error {
	rec, err := c.load(tx, id)
	if err != nil {
		return err
	}
	tx.touch(c.schema.Namespace)

	if err := tx.txn.Delete(recordKey(c.schema.Namespace, id)); err != nil {
		return err
	}
	for _, ix := range c.schema.Owners {
		if owner := ix.value(rec); owner != "" {
			if err := tx.txn.Delete(ownerKey(c.schema.Namespace, ix.Name, owner, id)); err != nil {
				return err
			}
		}
	}
	for _, ix := range c.schema.Uniques {
		if v := ix.value(rec); v != "" {
			if err := c.releaseUnique(tx, ix.Name, v, id); err != nil {
				return err
			}
		}
	}
	return nil
}
