// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package accounts

import (
	"context"
	"errors"

	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
)

// EnsureAdmin creates the configured admin account if no account with that
// username exists yet. An existing account is left untouched so a password
// rotated through the API survives restarts. It reports whether an account
// was created.
func (s *Service) EnsureAdmin(ctx context.Context, cfg *config.SecurityConfig) (bool, error) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return false, nil
	}
	_, err := s.db.Accounts.GetByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, err
	}

	hash, err := s.hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return false, err
	}
	email := cfg.AdminEmail
	if email == "" {
		email = cfg.AdminUsername + "@localhost"
	}
	a := &models.Account{
		Username:     cfg.AdminUsername,
		Email:        email,
		Name:         cfg.AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Status:       models.AccountActive,
	}
	if err := s.db.Accounts.Create(ctx, a); err != nil {
		return false, err
	}
	logging.Ctx(ctx).Info().
		Str("user_id", a.ID).
		Str("username", logging.SanitizeUsername(a.Username)).
		Msg("Admin account created")
	return true, nil
}
