// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package database

import (
	"context"

	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

const (
	linkIndexCreator = "creator"
	linkIndexOrder   = "order"
)

// LinkRepo stores links, indexed by creator. A paid order can back at most
// one link: the order index is unique.
type LinkRepo struct {
	db   *DB
	coll *store.Collection[models.Link]
}

func newLinkRepo(db *DB) *LinkRepo {
	return &LinkRepo{
		db: db,
		coll: store.NewCollection(store.Schema[models.Link]{
			Namespace: "links",
			ID:        func(l *models.Link) string { return l.ID },
			SetID:     func(l *models.Link, id string) { l.ID = id },
			NewID:     func() string { return NewID(PrefixLink) },
			Owners: []store.Index[models.Link]{
				{Name: linkIndexCreator, Key: func(l *models.Link) string { return l.CreatedBy }},
			},
			Uniques: []store.Index[models.Link]{
				{Name: linkIndexOrder, Key: func(l *models.Link) string { return l.OrderID }},
			},
		}),
	}
}

// NewLinkID returns a fresh link id. Issuance needs the id before the link
// is stored to build its URL.
func (r *LinkRepo) NewLinkID() string {
	return NewID(PrefixLink)
}

// NewLinkIDWithPrefix is NewLinkID with a caller-chosen prefix in place of
// "link". An empty prefix falls back to the default.
func (r *LinkRepo) NewLinkIDWithPrefix(prefix string) string {
	if prefix == "" {
		return r.NewLinkID()
	}
	return NewID(prefix)
}

// CreateTx stores a new link with status unused unless one is set.
func (r *LinkRepo) CreateTx(tx *store.Tx, l *models.Link) error {
	now := r.db.now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	if l.Status == "" {
		l.Status = models.LinkUnused
	}
	return translate(r.coll.Create(tx, l))
}

// Create stores a new link in its own transaction.
func (r *LinkRepo) Create(ctx context.Context, l *models.Link) error {
	return r.db.Update(ctx, func(tx *store.Tx) error {
		return r.CreateTx(tx, l)
	})
}

// GetTx loads a link by id.
func (r *LinkRepo) GetTx(tx *store.Tx, id string) (*models.Link, error) {
	l, err := r.coll.Get(tx, id)
	if err != nil {
		return nil, notFound("link", id, err)
	}
	return l, nil
}

// Get loads a link by id.
func (r *LinkRepo) Get(ctx context.Context, id string) (*models.Link, error) {
	var out *models.Link
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.GetTx(tx, id)
		return err
	})
	return out, err
}

// GetByOrderTx returns the link fulfilling an order.
func (r *LinkRepo) GetByOrderTx(tx *store.Tx, orderID string) (*models.Link, error) {
	l, err := r.coll.FindUnique(tx, linkIndexOrder, orderID)
	if err != nil {
		return nil, notFound("link for order", orderID, err)
	}
	return l, nil
}

// ListByCreatorTx returns the links created by an account, newest first.
func (r *LinkRepo) ListByCreatorTx(tx *store.Tx, accountID string) ([]*models.Link, error) {
	list, err := r.coll.ListBy(tx, linkIndexCreator, accountID)
	if err != nil {
		return nil, translate(err)
	}
	sortNewestFirst(list, linkCreated)
	return list, nil
}

// ListByCreator returns the links created by an account, newest first.
func (r *LinkRepo) ListByCreator(ctx context.Context, accountID string) ([]*models.Link, error) {
	var out []*models.Link
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.ListByCreatorTx(tx, accountID)
		return err
	})
	return out, err
}

// ListTx returns every link, newest first.
func (r *LinkRepo) ListTx(tx *store.Tx) ([]*models.Link, error) {
	list, err := r.coll.List(tx)
	if err != nil {
		return nil, translate(err)
	}
	sortNewestFirst(list, linkCreated)
	return list, nil
}

// List returns every link, newest first.
func (r *LinkRepo) List(ctx context.Context) ([]*models.Link, error) {
	var out []*models.Link
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.ListTx(tx)
		return err
	})
	return out, err
}

// UpdateTx applies mutate to the stored link and bumps UpdatedAt.
func (r *LinkRepo) UpdateTx(tx *store.Tx, id string, mutate func(*models.Link) error) (*models.Link, error) {
	l, err := r.coll.Update(tx, id, func(l *models.Link) error {
		if err := mutate(l); err != nil {
			return err
		}
		l.UpdatedAt = r.db.now()
		return nil
	})
	if err != nil {
		return nil, notFound("link", id, err)
	}
	return l, nil
}

// Update applies mutate to the stored link in its own transaction.
func (r *LinkRepo) Update(ctx context.Context, id string, mutate func(*models.Link) error) (*models.Link, error) {
	var out *models.Link
	err := r.db.Update(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.UpdateTx(tx, id, mutate)
		return err
	})
	return out, err
}

// DeleteTx hard-deletes a link.
func (r *LinkRepo) DeleteTx(tx *store.Tx, id string) error {
	if err := r.coll.Delete(tx, id); err != nil {
		return notFound("link", id, err)
	}
	return nil
}

// Delete hard-deletes a link in its own transaction.
func (r *LinkRepo) Delete(ctx context.Context, id string) error {
	return r.db.Update(ctx, func(tx *store.Tx) error {
		return r.DeleteTx(tx, id)
	})
}

func linkCreated(l *models.Link) int64 {
	return l.CreatedAt.UnixNano()
}
