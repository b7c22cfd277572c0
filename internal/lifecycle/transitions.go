// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package lifecycle

import (
	"fmt"

	"github.com/tomtom215/assesslink/internal/models"
)

// who may request a manual transition.
type actor int

const (
	ownerOrAdmin actor = iota
	adminOnly
)

type edge struct {
	from, to models.LinkStatus
}

// manual lists the transitions SetStatus accepts. unused -> used is absent:
// only Redeem produces it.
var manual = map[edge]actor{
	{models.LinkUnused, models.LinkDisabled}: ownerOrAdmin,
	{models.LinkUsed, models.LinkDisabled}:   ownerOrAdmin,
	{models.LinkDisabled, models.LinkUnused}: ownerOrAdmin,
	{models.LinkDisabled, models.LinkUsed}:   ownerOrAdmin,
	{models.LinkUnused, models.LinkExpired}:  adminOnly,
	{models.LinkExpired, models.LinkUnused}:  adminOnly,
}

// resolveTransition returns the status l ends up in when p asks for to.
//
// Re-enabling a disabled link lands on unused only if it was never
// redeemed; a redeemed link goes back to used, whichever of the two was
// requested. Asking for the current status is a no-op.
func resolveTransition(p models.Principal, l *models.Link, to models.LinkStatus) (models.LinkStatus, error) {
	if !to.Valid() {
		return "", fmt.Errorf("%w: unknown link status %q", models.ErrInvalidInput, to)
	}
	if l.Status == to {
		return to, nil
	}
	if l.Status == models.LinkDisabled && (to == models.LinkUnused || to == models.LinkUsed) {
		if l.Redeemed() {
			to = models.LinkUsed
		} else {
			to = models.LinkUnused
		}
	}
	who, ok := manual[edge{l.Status, to}]
	if !ok {
		return "", fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, l.Status, to)
	}
	if who == adminOnly && !p.IsAdmin() {
		return "", fmt.Errorf("%w: %s -> %s requires admin", models.ErrForbidden, l.Status, to)
	}
	return to, nil
}

func forbidden(linkID string) error {
	return fmt.Errorf("%w: link %q belongs to another account", models.ErrForbidden, linkID)
}
