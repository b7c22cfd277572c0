// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package database

import (
	"context"
	"strings"

	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

const (
	accountIndexUsername = "username"
	accountIndexEmail    = "email"
	accountIndexRole     = "role"
)

// AccountRepo stores accounts. Username and email are unique after
// normalisation (trimmed, lower-cased).
type AccountRepo struct {
	db   *DB
	coll *store.Collection[models.Account]
}

func newAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{
		db: db,
		coll: store.NewCollection(store.Schema[models.Account]{
			Namespace: "accounts",
			ID:        func(a *models.Account) string { return a.ID },
			SetID:     func(a *models.Account, id string) { a.ID = id },
			NewID:     func() string { return NewID(PrefixAccount) },
			Owners: []store.Index[models.Account]{
				{Name: accountIndexRole, Key: func(a *models.Account) string { return string(a.Role) }},
			},
			Uniques: []store.Index[models.Account]{
				{Name: accountIndexUsername, Key: func(a *models.Account) string { return a.Username }, Normalize: models.NormalizeUsername},
				{Name: accountIndexEmail, Key: func(a *models.Account) string { return a.Email }, Normalize: models.NormalizeEmail},
			},
		}),
	}
}

// CreateTx stores a new account. A taken username or email is a conflict.
func (r *AccountRepo) CreateTx(tx *store.Tx, a *models.Account) error {
	now := r.db.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	a.Username = strings.TrimSpace(a.Username)
	a.Email = models.NormalizeEmail(a.Email)
	return translate(r.coll.Create(tx, a))
}

// Create stores a new account in its own transaction.
func (r *AccountRepo) Create(ctx context.Context, a *models.Account) error {
	return r.db.Update(ctx, func(tx *store.Tx) error {
		return r.CreateTx(tx, a)
	})
}

// GetTx loads an account by id.
func (r *AccountRepo) GetTx(tx *store.Tx, id string) (*models.Account, error) {
	a, err := r.coll.Get(tx, id)
	if err != nil {
		return nil, notFound("account", id, err)
	}
	return a, nil
}

// Get loads an account by id.
func (r *AccountRepo) Get(ctx context.Context, id string) (*models.Account, error) {
	var out *models.Account
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.GetTx(tx, id)
		return err
	})
	return out, err
}

// GetByUsernameTx looks an account up by username, case-insensitively.
func (r *AccountRepo) GetByUsernameTx(tx *store.Tx, username string) (*models.Account, error) {
	a, err := r.coll.FindUnique(tx, accountIndexUsername, username)
	if err != nil {
		return nil, notFound("account", username, err)
	}
	return a, nil
}

// GetByUsername looks an account up by username, case-insensitively.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var out *models.Account
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.GetByUsernameTx(tx, username)
		return err
	})
	return out, err
}

// GetByEmail looks an account up by email, case-insensitively.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var out *models.Account
	err := r.db.View(ctx, func(tx *store.Tx) error {
		a, err := r.coll.FindUnique(tx, accountIndexEmail, email)
		if err != nil {
			return notFound("account", email, err)
		}
		out = a
		return nil
	})
	return out, err
}

// ListTx returns all accounts, newest first.
func (r *AccountRepo) ListTx(tx *store.Tx) ([]*models.Account, error) {
	list, err := r.coll.List(tx)
	if err != nil {
		return nil, translate(err)
	}
	sortNewestFirst(list, func(a *models.Account) int64 { return a.CreatedAt.UnixNano() })
	return list, nil
}

// List returns all accounts, newest first.
func (r *AccountRepo) List(ctx context.Context) ([]*models.Account, error) {
	var out []*models.Account
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.ListTx(tx)
		return err
	})
	return out, err
}

// UpdateTx applies mutate to the stored account and bumps UpdatedAt.
func (r *AccountRepo) UpdateTx(tx *store.Tx, id string, mutate func(*models.Account) error) (*models.Account, error) {
	a, err := r.coll.Update(tx, id, func(a *models.Account) error {
		if err := mutate(a); err != nil {
			return err
		}
		a.UpdatedAt = r.db.now()
		a.Username = strings.TrimSpace(a.Username)
		a.Email = models.NormalizeEmail(a.Email)
		return nil
	})
	if err != nil {
		return nil, notFound("account", id, err)
	}
	return a, nil
}

// Update applies mutate to the stored account in its own transaction.
func (r *AccountRepo) Update(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	var out *models.Account
	err := r.db.Update(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.UpdateTx(tx, id, mutate)
		return err
	})
	return out, err
}

// DeleteTx removes an account. Links and notifications it owns are kept.
func (r *AccountRepo) DeleteTx(tx *store.Tx, id string) error {
	if err := r.coll.Delete(tx, id); err != nil {
		return notFound("account", id, err)
	}
	return nil
}

// Delete removes an account in its own transaction.
func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	return r.db.Update(ctx, func(tx *store.Tx) error {
		return r.DeleteTx(tx, id)
	})
}

// Count returns the number of accounts.
func (r *AccountRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		n, err = r.coll.Count(tx)
		return translate(err)
	})
	return n, err
}

// HasAdminTx reports whether any admin account exists.
func (r *AccountRepo) HasAdminTx(tx *store.Tx) (bool, error) {
	admins, err := r.coll.ListBy(tx, accountIndexRole, string(models.RoleAdmin))
	if err != nil {
		return false, translate(err)
	}
	return len(admins) > 0, nil
}

// HasAdmin reports whether any admin account exists.
func (r *AccountRepo) HasAdmin(ctx context.Context) (bool, error) {
	var ok bool
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		ok, err = r.HasAdminTx(tx)
		return err
	})
	return ok, err
}
