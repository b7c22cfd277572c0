// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package lifecycle

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tomtom215/assesslink/internal/events"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/metrics"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/quota"
	"github.com/tomtom215/assesslink/internal/store"
)

// IssueRequest asks for Quantity links to one questionnaire.
type IssueRequest struct {
	QuestionnaireType string     `json:"questionnaireType" validate:"required,max=64"`
	Quantity          int        `json:"quantity" validate:"omitempty,min=1,max=100"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	// CustomPrefix replaces "link" at the start of each minted id.
	CustomPrefix string `json:"customPrefix,omitempty" validate:"omitempty,max=16"`
}

var customPrefixPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,15}$`)

// IssueResult is what Issue hands back to the caller.
type IssueResult struct {
	Links []*models.Link `json:"links"`
	Total int            `json:"total"`
}

// Issue charges the caller's quota and mints the requested links in one
// transaction. Either every link is created and the charge applied, or
// neither happens.
func (s *Service) Issue(ctx context.Context, p models.Principal, req IssueRequest) (*IssueResult, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 || qty > s.opts.MaxBatch {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", models.ErrInvalidInput, s.opts.MaxBatch)
	}
	qType := strings.TrimSpace(req.QuestionnaireType)
	if qType == "" {
		return nil, fmt.Errorf("%w: questionnaireType is required", models.ErrInvalidInput)
	}
	prefix := strings.ToLower(strings.TrimSpace(req.CustomPrefix))
	if prefix != "" && !customPrefixPattern.MatchString(prefix) {
		return nil, fmt.Errorf("%w: customPrefix must be up to 16 lower-case letters, digits or '-'", models.ErrInvalidInput)
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.db.Now()) {
		return nil, fmt.Errorf("%w: expiresAt must be in the future", models.ErrInvalidInput)
	}

	var links []*models.Link
	var charged *models.Account
	err := s.db.Update(ctx, func(tx *store.Tx) error {
		links = make([]*models.Link, 0, qty)
		charged = nil

		q, err := s.db.Questionnaires.GetTx(tx, qType)
		if err != nil {
			return err
		}
		if !q.IsPublished {
			return fmt.Errorf("%w: questionnaire %q is not published", models.ErrInvalidInput, qType)
		}

		acct, err := s.db.Accounts.GetTx(tx, p.UserID)
		if err != nil {
			return err
		}
		if acct.Status != models.AccountActive {
			return fmt.Errorf("%w: account %q is %s", models.ErrAccountInactive, p.UserID, acct.Status)
		}
		if quota.PolicyFor(models.SourceQuota) == quota.ChargeQuota {
			if charged, err = s.ledger.ChargeTx(tx, p.UserID, qty); err != nil {
				return err
			}
		}

		for range qty {
			id := s.db.Links.NewLinkIDWithPrefix(prefix)
			l := &models.Link{
				ID:                id,
				URL:               s.URLFor(id),
				QuestionnaireType: qType,
				Status:            models.LinkUnused,
				CreatedBy:         p.UserID,
				Source:            models.SourceQuota,
				ExpiredAt:         req.ExpiresAt,
			}
			if err := s.db.Links.CreateTx(tx, l); err != nil {
				return err
			}
			links = append(links, l)
		}

		tx.OnCommit(func() {
			metrics.RecordLinksIssued(string(models.SourceQuota), len(links))
			if charged != nil && s.ledger.Low(charged) {
				s.publish(ctx, events.TopicQuotaLow, events.QuotaLow{
					AccountID: charged.ID,
					Remaining: charged.RemainingQuota,
					Threshold: s.ledger.WarningThreshold(),
				})
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("user_id", p.UserID).
		Str("questionnaire", qType).
		Int("quantity", len(links)).
		Msg("Links issued")
	return &IssueResult{Links: links, Total: len(links)}, nil
}
