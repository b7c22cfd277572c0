// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/metrics"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

// errNotDue aborts an expiry attempt whose link changed since the scan.
var errNotDue = errors.New("link no longer due")

// ExpireDue moves every unused link whose deadline is at or before now to
// expired and returns how many it changed. Each link is re-checked in its
// own transaction, so a concurrent redemption wins cleanly.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	all, err := s.db.Links.List(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, l := range all {
		if !l.DueForExpiry(now) {
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return expired, err
		}
		err := s.db.Update(ctx, func(tx *store.Tx) error {
			_, err := s.db.Links.UpdateTx(tx, l.ID, func(cur *models.Link) error {
				if !cur.DueForExpiry(now) {
					return errNotDue
				}
				cur.Status = models.LinkExpired
				return nil
			})
			return err
		})
		switch {
		case err == nil:
			expired++
		case errors.Is(err, errNotDue), errors.Is(err, models.ErrNotFound):
		default:
			logging.Ctx(ctx).Warn().Err(err).Str("link_id", l.ID).Msg("Failed to expire link")
			if errors.Is(err, models.ErrBackendUnavailable) {
				metrics.RecordSweep("links", expired)
				return expired, err
			}
		}
	}

	metrics.RecordSweep("links", expired)
	if expired > 0 {
		logging.Ctx(ctx).Info().Int("expired", expired).Msg("Expired due links")
	}
	return expired, nil
}
