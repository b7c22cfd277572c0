// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/assesslink/internal/auth"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
)

// resetPasswordLength is the length of admin-generated passwords.
const resetPasswordLength = 12

// Filter narrows the admin account listing.
type Filter struct {
	Search   string
	Role     models.Role
	Status   models.AccountStatus
	Page     int
	PageSize int
}

// Listing is a page of accounts in the admin listing shape.
type Listing struct {
	Users    []models.AccountView `json:"users"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

// UpdateRequest is a partial account update. Nil fields are left alone.
type UpdateRequest struct {
	Username *string      `json:"username" validate:"omitempty,username"`
	Email    *string      `json:"email" validate:"omitempty,email,max=254"`
	Name     *string      `json:"name" validate:"omitempty,max=100"`
	Role     *models.Role `json:"role" validate:"omitempty,oneof=admin user"`
}

func (f Filter) matches(a *models.Account) bool {
	if f.Role != "" && a.Role != f.Role {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(a.Username), q) ||
			strings.Contains(strings.ToLower(a.Email), q) ||
			strings.Contains(strings.ToLower(a.Name), q)
	}
	return true
}

// List returns accounts matching f, newest first.
func (s *Service) List(ctx context.Context, f Filter) (Listing, error) {
	if f.Role != "" && !f.Role.Valid() {
		return Listing{}, fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, f.Role)
	}
	if f.Status != "" && !f.Status.Valid() {
		return Listing{}, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, f.Status)
	}
	all, err := s.db.Accounts.List(ctx)
	if err != nil {
		return Listing{}, err
	}
	views := make([]models.AccountView, 0, len(all))
	for _, a := range all {
		if f.matches(a) {
			views = append(views, a.View())
		}
	}
	page := models.Paginate(views, f.Page, f.PageSize)
	return Listing{Users: page.Items, Total: page.Total, Page: page.Page, PageSize: page.PageSize}, nil
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id string) (models.AccountView, error) {
	a, err := s.db.Accounts.Get(ctx, id)
	if err != nil {
		return models.AccountView{}, err
	}
	return a.View(), nil
}

// Update applies an admin edit. Renaming onto a taken username or email is
// ErrConflict. Admins cannot demote themselves.
func (s *Service) Update(ctx context.Context, p models.Principal, id string, req UpdateRequest) (models.AccountView, error) {
	if req.Role != nil {
		if !req.Role.Valid() {
			return models.AccountView{}, fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, *req.Role)
		}
		if id == p.UserID && *req.Role != models.RoleAdmin {
			return models.AccountView{}, fmt.Errorf("%w: cannot change your own role", models.ErrInvalidInput)
		}
	}
	a, err := s.db.Accounts.Update(ctx, id, func(a *models.Account) error {
		if req.Username != nil {
			if strings.TrimSpace(*req.Username) == "" {
				return fmt.Errorf("%w: username cannot be empty", models.ErrInvalidInput)
			}
			a.Username = *req.Username
		}
		if req.Email != nil {
			if strings.TrimSpace(*req.Email) == "" {
				return fmt.Errorf("%w: email cannot be empty", models.ErrInvalidInput)
			}
			a.Email = *req.Email
		}
		if req.Name != nil {
			a.Name = strings.TrimSpace(*req.Name)
		}
		if req.Role != nil {
			a.Role = *req.Role
		}
		return nil
	})
	if err != nil {
		return models.AccountView{}, err
	}
	logging.Ctx(ctx).Info().Str("user_id", id).Str("by", p.UserID).Msg("Account updated")
	return a.View(), nil
}

// SetStatus approves, disables or re-enables an account.
func (s *Service) SetStatus(ctx context.Context, p models.Principal, id string, status models.AccountStatus) (models.AccountView, error) {
	if !status.Valid() {
		return models.AccountView{}, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, status)
	}
	if id == p.UserID && status != models.AccountActive {
		return models.AccountView{}, fmt.Errorf("%w: cannot deactivate your own account", models.ErrInvalidInput)
	}
	a, err := s.db.Accounts.Update(ctx, id, func(a *models.Account) error {
		a.Status = status
		return nil
	})
	if err != nil {
		return models.AccountView{}, err
	}
	logging.Ctx(ctx).Info().
		Str("user_id", id).
		Str("status", string(status)).
		Str("by", p.UserID).
		Msg("Account status changed")
	return a.View(), nil
}

// GrantQuota tops up an account's remaining quota.
func (s *Service) GrantQuota(ctx context.Context, p models.Principal, id string, amount int) (models.AccountView, error) {
	a, err := s.ledger.Grant(ctx, id, amount)
	if err != nil {
		return models.AccountView{}, err
	}
	logging.Ctx(ctx).Info().
		Str("user_id", id).
		Int("amount", amount).
		Int("remaining", a.RemainingQuota).
		Str("by", p.UserID).
		Msg("Quota granted")
	return a.View(), nil
}

// ResetPassword replaces an account's password with a generated one and
// returns it. This is the only time the plain text is available.
func (s *Service) ResetPassword(ctx context.Context, p models.Principal, id string) (string, error) {
	if _, err := s.db.Accounts.Get(ctx, id); err != nil {
		return "", err
	}
	password, err := auth.GeneratePassword(resetPasswordLength)
	if err != nil {
		return "", err
	}
	if err := s.setPassword(ctx, id, password); err != nil {
		return "", err
	}
	s.security.LogPasswordChanged(id, p.UserID)
	return password, nil
}

// Delete removes an account. Links and notifications it owns are kept.
func (s *Service) Delete(ctx context.Context, p models.Principal, id string) error {
	if id == p.UserID {
		return fmt.Errorf("%w: cannot delete your own account", models.ErrInvalidInput)
	}
	if err := s.db.Accounts.Delete(ctx, id); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Str("user_id", id).Str("by", p.UserID).Msg("Account deleted")
	return nil
}

// BatchDelete removes each listed account and returns how many were
// deleted. The caller's own id and unknown ids are skipped.
func (s *Service) BatchDelete(ctx context.Context, p models.Principal, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no ids given", models.ErrInvalidInput)
	}
	deleted := 0
	for _, id := range ids {
		if id == p.UserID {
			continue
		}
		err := s.db.Accounts.Delete(ctx, id)
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, models.ErrNotFound):
		default:
			return deleted, err
		}
	}
	logging.Ctx(ctx).Info().Int("deleted", deleted).Str("by", p.UserID).Msg("Accounts batch deleted")
	return deleted, nil
}
