// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package database

import (
	"errors"
	"fmt"

	"github.com/tomtom215/assesslink/internal/kv"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

// translate maps store and backend errors onto the models taxonomy. Errors
// that already carry a taxonomy sentinel pass through untouched.
func translate(err error) error {
	if err == nil || models.IsDomainError(err) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %w", models.ErrNotFound, err)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %w", models.ErrConflict, err)
	case errors.Is(err, kv.ErrConflict):
		return fmt.Errorf("%w: %w", models.ErrConflict, err)
	case errors.Is(err, kv.ErrUnavailable), errors.Is(err, kv.ErrClosed):
		return fmt.Errorf("%w: %w", models.ErrBackendUnavailable, err)
	}
	return err
}

// notFound names the missing entity in the error text.
func notFound(entity, id string, err error) error {
	err = translate(err)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%s %q: %w", entity, id, err)
	}
	return err
}
