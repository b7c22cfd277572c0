// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package store

import (
	"errors"
	"fmt"

	"github.com/tomtom215/assesslink/internal/kv"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicate is matched by every DuplicateError.
	ErrDuplicate = errors.New("store: duplicate key")

	// ErrCorrupt means a stored value could not be decoded.
	ErrCorrupt = errors.New("store: undecodable record")

	// ErrConflict is returned once conflict retries are exhausted.
	ErrConflict = kv.ErrConflict

	// ErrUnknownIndex is a programming error: the index name is not in the schema.
	ErrUnknownIndex = errors.New("store: unknown index")

	// ErrIDChanged is returned when an update mutator rewrites the record id.
	ErrIDChanged = errors.New("store: record id is immutable")
)

// DuplicateError reports which key blocked a Create or Update.
type DuplicateError struct {
	Namespace string
	Index     string // "id" for the primary key
	Value     string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("store: duplicate %s.%s %q", e.Namespace, e.Index, e.Value)
}

// Is lets errors.Is(err, ErrDuplicate) match.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
