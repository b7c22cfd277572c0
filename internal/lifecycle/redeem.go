// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/assesslink/internal/events"
	"github.com/tomtom215/assesslink/internal/metrics"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

// Redemption results recorded in metrics.
const (
	redeemOK        = "ok"
	redeemFinalized = "already_finalized"
	redeemRejected  = "rejected"
	redeemExpired   = "expired"
	redeemError     = "error"
)

// checkRedeemable classifies why l cannot be redeemed, or returns nil.
func checkRedeemable(l *models.Link) error {
	if l.Status == models.LinkUsed || l.Redeemed() {
		return fmt.Errorf("%w: link %q was already used", models.ErrAlreadyFinalized, l.ID)
	}
	switch l.Status {
	case models.LinkDisabled, models.LinkExpired:
		return fmt.Errorf("%w: link %q is %s", models.ErrInvalidTransition, l.ID, l.Status)
	}
	return nil
}

// Redeem marks a link used and attaches the report produced by the test
// taker. Each link redeems at most once.
//
// A link past its expiry deadline is flipped to expired in the same
// transaction and the redemption is rejected.
func (s *Service) Redeem(ctx context.Context, linkID, reportID string) (*models.Link, error) {
	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return nil, fmt.Errorf("%w: reportId is required", models.ErrInvalidInput)
	}

	var out *models.Link
	var expiredNow bool
	err := s.db.Update(ctx, func(tx *store.Tx) error {
		out, expiredNow = nil, false
		l, err := s.db.Links.GetTx(tx, linkID)
		if err != nil {
			return err
		}
		if err := checkRedeemable(l); err != nil {
			return err
		}
		now := s.db.Now()
		if l.DueForExpiry(now) {
			if _, err := s.db.Links.UpdateTx(tx, linkID, func(l *models.Link) error {
				l.Status = models.LinkExpired
				return nil
			}); err != nil {
				return err
			}
			expiredNow = true
			return nil
		}

		out, err = s.db.Links.UpdateTx(tx, linkID, func(l *models.Link) error {
			l.Status = models.LinkUsed
			l.UsedAt = &now
			l.ReportID = reportID
			return nil
		})
		if err != nil {
			return err
		}
		redeemed := *out
		tx.OnCommit(func() {
			s.publish(ctx, events.TopicLinkRedeemed, events.LinkRedeemed{
				LinkID:            redeemed.ID,
				OwnerID:           redeemed.CreatedBy,
				ReportID:          redeemed.ReportID,
				QuestionnaireType: redeemed.QuestionnaireType,
				UsedAt:            now,
			})
		})
		return nil
	})

	switch {
	case err == nil && expiredNow:
		metrics.RecordRedemption(redeemExpired)
		return nil, fmt.Errorf("%w: link %q has expired", models.ErrInvalidTransition, linkID)
	case err == nil:
		metrics.RecordRedemption(redeemOK)
		return out, nil
	case errors.Is(err, models.ErrAlreadyFinalized):
		metrics.RecordRedemption(redeemFinalized)
	case errors.Is(err, models.ErrInvalidTransition):
		metrics.RecordRedemption(redeemRejected)
	default:
		metrics.RecordRedemption(redeemError)
	}
	return nil, err
}
