// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package models

import "errors"

// Error taxonomy shared by every layer above the store. Wrap with
// fmt.Errorf("...: %w", ErrX) and classify with errors.Is.
var (
	// ErrNotFound means an entity id or business reference is absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness violation, or an optimistic transaction
	// that kept losing to concurrent writers.
	ErrConflict = errors.New("conflict")

	// ErrQuotaExceeded means the account cannot cover the requested quantity.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrInvalidSignature means a payment notification failed verification.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrAlreadyFinalized means a redemption or fulfilment targeted a terminal state.
	ErrAlreadyFinalized = errors.New("already finalized")

	// ErrConfiguration means the merchant secret is missing or a placeholder.
	ErrConfiguration = errors.New("configuration error")

	// ErrBackendUnavailable means the key/value backend failed or its breaker is open.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrInvalidTransition means the link state machine refused the change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidInput means the caller supplied malformed or out-of-range data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized means credentials are missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the principal may not act on the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrAccountInactive means the account is pending approval or disabled.
	ErrAccountInactive = errors.New("account inactive")
)

var taxonomy = []error{
	ErrNotFound,
	ErrConflict,
	ErrQuotaExceeded,
	ErrInvalidSignature,
	ErrAlreadyFinalized,
	ErrConfiguration,
	ErrBackendUnavailable,
	ErrInvalidTransition,
	ErrInvalidInput,
	ErrUnauthorized,
	ErrForbidden,
	ErrAccountInactive,
}

// IsDomainError reports whether err already carries one of the taxonomy sentinels.
func IsDomainError(err error) bool {
	for _, target := range taxonomy {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
