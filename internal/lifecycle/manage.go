// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package lifecycle

import (
	"context"
	"fmt"

	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

// BatchFailure is one id a batch operation could not apply.
type BatchFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BatchResult reports a batch operation per id. Ids are applied
// independently; a failure does not roll back the others.
type BatchResult struct {
	Succeeded []string       `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

func newBatchResult() *BatchResult {
	return &BatchResult{Succeeded: []string{}, Failed: []BatchFailure{}}
}

func (r *BatchResult) record(id string, err error) {
	if err != nil {
		r.Failed = append(r.Failed, BatchFailure{ID: id, Error: err.Error()})
		return
	}
	r.Succeeded = append(r.Succeeded, id)
}

// SetStatus applies a manual status change permitted by the transition table.
func (s *Service) SetStatus(ctx context.Context, p models.Principal, id string, status models.LinkStatus) (*models.Link, error) {
	var out *models.Link
	err := s.db.Update(ctx, func(tx *store.Tx) error {
		l, err := s.db.Links.GetTx(tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(p, l); err != nil {
			return err
		}
		to, err := resolveTransition(p, l, status)
		if err != nil {
			return err
		}
		if to == l.Status {
			out = l
			return nil
		}
		out, err = s.db.Links.UpdateTx(tx, id, func(l *models.Link) error {
			l.Status = to
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ForceStatus sets any status on a link, bypassing the transition table.
// Admin only. Redemption data (usedAt, reportId) is kept, so a forced
// link can still never be redeemed twice.
func (s *Service) ForceStatus(ctx context.Context, p models.Principal, id string, status models.LinkStatus) (*models.Link, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: force status requires admin", models.ErrForbidden)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown link status %q", models.ErrInvalidInput, status)
	}
	l, err := s.db.Links.Update(ctx, id, func(l *models.Link) error {
		l.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Warn().
		Str("link_id", id).
		Str("status", string(status)).
		Str("admin_id", p.UserID).
		Msg("Link status forced")
	return l, nil
}

// BatchSetStatus applies SetStatus to each id in its own transaction.
func (s *Service) BatchSetStatus(ctx context.Context, p models.Principal, ids []string, status models.LinkStatus) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: linkIds is empty", models.ErrInvalidInput)
	}
	res := newBatchResult()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, err := s.SetStatus(ctx, p, id, status)
		res.record(id, err)
	}
	return res, nil
}

// Delete removes a link. Owner or admin.
func (s *Service) Delete(ctx context.Context, p models.Principal, id string) error {
	return s.db.Update(ctx, func(tx *store.Tx) error {
		l, err := s.db.Links.GetTx(tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(p, l); err != nil {
			return err
		}
		return s.db.Links.DeleteTx(tx, id)
	})
}

// BatchDelete applies Delete to each id in its own transaction.
func (s *Service) BatchDelete(ctx context.Context, p models.Principal, ids []string) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: linkIds is empty", models.ErrInvalidInput)
	}
	res := newBatchResult()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.record(id, s.Delete(ctx, p, id))
	}
	return res, nil
}
