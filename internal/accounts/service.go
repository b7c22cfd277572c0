// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/assesslink/internal/auth"
	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/quota"
	"github.com/tomtom215/assesslink/internal/store"
)

// RegisterRequest is the self-service registration payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name" validate:"max=100"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// ChangePasswordRequest is the self-service password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=72"`
}

// Session is an issued token plus the account it was issued for.
type Session struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	ExpiresIn int64              `json:"expiresIn"`
	User      models.AccountView `json:"user"`
}

// Service owns account state outside of quota charging.
type Service struct {
	db       *database.DB
	ledger   *quota.Ledger
	hasher   *auth.PasswordHasher
	tokens   *auth.JWTManager
	lockout  *auth.LockoutManager
	policy   config.PasswordPolicy
	security *logging.SecurityLogger
}

// NewService wires the account service. lockout may be nil to disable
// brute-force protection.
func NewService(db *database.DB, ledger *quota.Ledger, hasher *auth.PasswordHasher, tokens *auth.JWTManager, lockout *auth.LockoutManager) *Service {
	return &Service{
		db:       db,
		ledger:   ledger,
		hasher:   hasher,
		tokens:   tokens,
		lockout:  lockout,
		policy:   config.RegistrationPasswordPolicy(),
		security: logging.NewSecurityLogger(),
	}
}

// SetSecurityLogger replaces the security logger.
func (s *Service) SetSecurityLogger(l *logging.SecurityLogger) {
	s.security = l
}

func (s *Service) checkPassword(password, username string) error {
	if err := s.policy.ValidateWithError(password, username); err != nil {
		return fmt.Errorf("%w: %w", models.ErrInvalidInput, err)
	}
	return nil
}

// Register creates a pending user account. Username and email are unique
// case-insensitively; a clash is ErrConflict.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	if models.NormalizeUsername(req.Username) == "" || models.NormalizeEmail(req.Email) == "" {
		return nil, fmt.Errorf("%w: username and email are required", models.ErrInvalidInput)
	}
	if err := s.checkPassword(req.Password, req.Username); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = req.Username
	}
	var created *models.Account
	err = s.db.Update(ctx, func(tx *store.Tx) error {
		a := &models.Account{
			Username:     req.Username,
			Email:        req.Email,
			Name:         name,
			PasswordHash: hash,
			Role:         models.RoleUser,
			Status:       models.AccountPending,
		}
		hasAdmin, err := s.db.Accounts.HasAdminTx(tx)
		if err != nil {
			return err
		}
		if !hasAdmin {
			a.Role = models.RoleAdmin
			a.Status = models.AccountActive
		}
		if err := s.db.Accounts.CreateTx(tx, a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := logging.Ctx(ctx).Info().
		Str("user_id", created.ID).
		Str("username", logging.SanitizeUsername(created.Username)).
		Str("status", string(created.Status))
	if created.IsAdmin() {
		ev = ev.Bool("bootstrap_admin", true)
	}
	ev.Msg("Account registered")
	return created, nil
}

// Login verifies credentials and issues a token. Wrong credentials are
// ErrUnauthorized whether or not the username exists; a correct password on
// a pending or disabled account is ErrAccountInactive.
func (s *Service) Login(ctx context.Context, req LoginRequest, ip string) (*Session, error) {
	subject := models.NormalizeUsername(req.Username)
	if err := s.lockout.Check(ctx, subject); err != nil {
		s.security.LogLoginFailure(req.Username, ip, "locked")
		return nil, err
	}

	a, err := s.db.Accounts.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if a == nil {
		s.hasher.CompareDummy(req.Password)
		return nil, s.loginFailed(ctx, subject, req.Username, ip, "unknown user")
	}
	if !s.hasher.Compare(a.PasswordHash, req.Password) {
		return nil, s.loginFailed(ctx, subject, req.Username, ip, "bad password")
	}
	if a.Status != models.AccountActive {
		s.security.LogLoginFailure(req.Username, ip, "account "+string(a.Status))
		return nil, fmt.Errorf("%w: account is %s", models.ErrAccountInactive, a.Status)
	}

	s.lockout.RecordSuccess(subject)
	now := s.db.Now()
	a, err = s.db.Accounts.Update(ctx, a.ID, func(a *models.Account) error {
		a.LastLoginAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.security.LogLoginSuccess(a.ID, a.Username, ip)
	return s.session(a)
}

func (s *Service) loginFailed(ctx context.Context, subject, username, ip, reason string) error {
	s.security.LogLoginFailure(username, ip, reason)
	if err := s.lockout.RecordFailure(ctx, subject); err != nil {
		return err
	}
	return fmt.Errorf("%w: invalid username or password", models.ErrUnauthorized)
}

func (s *Service) session(a *models.Account) (*Session, error) {
	token, expires, err := s.tokens.GenerateToken(a)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: expires,
		ExpiresIn: int64(time.Until(expires).Seconds()),
		User:      a.View(),
	}, nil
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, p models.Principal) (models.AccountView, error) {
	a, err := s.db.Accounts.Get(ctx, p.UserID)
	if err != nil {
		return models.AccountView{}, err
	}
	return a.View(), nil
}

// Refresh issues a fresh token for the caller. The role is re-read from the
// store so a demoted or disabled account cannot extend an old token.
func (s *Service) Refresh(ctx context.Context, p models.Principal) (*Session, error) {
	a, err := s.db.Accounts.Get(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", models.ErrUnauthorized)
		}
		return nil, err
	}
	if a.Status != models.AccountActive {
		return nil, fmt.Errorf("%w: account is %s", models.ErrAccountInactive, a.Status)
	}
	return s.session(a)
}

// Logout signs the caller's current token out. Other tokens of the same
// account stay valid until they expire.
func (s *Service) Logout(_ context.Context, p models.Principal, ip string) {
	s.tokens.Revoke(p.TokenID)
	s.security.LogLogout(p.UserID, ip)
}

// ChangePassword replaces the caller's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, p models.Principal, req ChangePasswordRequest) error {
	a, err := s.db.Accounts.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(a.PasswordHash, req.CurrentPassword) {
		return fmt.Errorf("%w: current password is incorrect", models.ErrInvalidInput)
	}
	if req.NewPassword == req.CurrentPassword {
		return fmt.Errorf("%w: new password must differ from the current one", models.ErrInvalidInput)
	}
	if err := s.checkPassword(req.NewPassword, a.Username); err != nil {
		return err
	}
	if err := s.setPassword(ctx, a.ID, req.NewPassword); err != nil {
		return err
	}
	s.security.LogPasswordChanged(a.ID, p.UserID)
	return nil
}

func (s *Service) setPassword(ctx context.Context, id, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	_, err = s.db.Accounts.Update(ctx, id, func(a *models.Account) error {
		a.PasswordHash = hash
		return nil
	})
	return err
}
