// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

const (
	orderIndexOutTradeNo = "out_trade_no"
	orderIndexUser       = "user"
)

// OrderRepo stores orders. out_trade_no is unique and resolves through its
// own index entry, written in the same transaction as the order.
type OrderRepo struct {
	db   *DB
	coll *store.Collection[models.Order]
}

func newOrderRepo(db *DB) *OrderRepo {
	return &OrderRepo{
		db: db,
		coll: store.NewCollection(store.Schema[models.Order]{
			Namespace: "orders",
			ID:        func(o *models.Order) string { return o.ID },
			SetID:     func(o *models.Order, id string) { o.ID = id },
			NewID:     func() string { return NewID(PrefixOrder) },
			Owners: []store.Index[models.Order]{
				{Name: orderIndexUser, Key: func(o *models.Order) string { return o.UserID }},
			},
			Uniques: []store.Index[models.Order]{
				{Name: orderIndexOutTradeNo, Key: func(o *models.Order) string { return o.OutTradeNo }, Normalize: strings.TrimSpace},
			},
		}),
	}
}

// CreateTx stores a new order. A taken out_trade_no is a conflict.
func (r *OrderRepo) CreateTx(tx *store.Tx, o *models.Order) error {
	o.OutTradeNo = strings.TrimSpace(o.OutTradeNo)
	if o.OutTradeNo == "" {
		return fmt.Errorf("%w: out_trade_no is required", models.ErrInvalidInput)
	}
	now := r.db.now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	return translate(r.coll.Create(tx, o))
}

// Create stores a new order in its own transaction.
func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.Update(ctx, func(tx *store.Tx) error {
		return r.CreateTx(tx, o)
	})
}

// GetTx loads an order by id.
func (r *OrderRepo) GetTx(tx *store.Tx, id string) (*models.Order, error) {
	o, err := r.coll.Get(tx, id)
	if err != nil {
		return nil, notFound("order", id, err)
	}
	return o, nil
}

// Get loads an order by id.
func (r *OrderRepo) Get(ctx context.Context, id string) (*models.Order, error) {
	var out *models.Order
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.GetTx(tx, id)
		return err
	})
	return out, err
}

// GetByBusinessReferenceTx resolves an order by out_trade_no.
func (r *OrderRepo) GetByBusinessReferenceTx(tx *store.Tx, outTradeNo string) (*models.Order, error) {
	o, err := r.coll.FindUnique(tx, orderIndexOutTradeNo, outTradeNo)
	if err != nil {
		return nil, notFound("order", outTradeNo, err)
	}
	return o, nil
}

// GetByBusinessReference resolves an order by out_trade_no.
func (r *OrderRepo) GetByBusinessReference(ctx context.Context, outTradeNo string) (*models.Order, error) {
	var out *models.Order
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.GetByBusinessReferenceTx(tx, outTradeNo)
		return err
	})
	return out, err
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	var out []*models.Order
	err := r.db.View(ctx, func(tx *store.Tx) error {
		list, err := r.coll.ListBy(tx, orderIndexUser, userID)
		if err != nil {
			return translate(err)
		}
		out = list
		return nil
	})
	sortNewestFirst(out, orderCreated)
	return out, err
}

// ListTx returns every order, newest first.
func (r *OrderRepo) ListTx(tx *store.Tx) ([]*models.Order, error) {
	list, err := r.coll.List(tx)
	if err != nil {
		return nil, translate(err)
	}
	sortNewestFirst(list, orderCreated)
	return list, nil
}

// List returns every order, newest first.
func (r *OrderRepo) List(ctx context.Context) ([]*models.Order, error) {
	var out []*models.Order
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.ListTx(tx)
		return err
	})
	return out, err
}

// UpdateTx applies mutate to the stored order and bumps UpdatedAt.
func (r *OrderRepo) UpdateTx(tx *store.Tx, id string, mutate func(*models.Order) error) (*models.Order, error) {
	o, err := r.coll.Update(tx, id, func(o *models.Order) error {
		if err := mutate(o); err != nil {
			return err
		}
		o.OutTradeNo = strings.TrimSpace(o.OutTradeNo)
		o.UpdatedAt = r.db.now()
		return nil
	})
	if err != nil {
		return nil, notFound("order", id, err)
	}
	return o, nil
}

// Update applies mutate to the stored order in its own transaction.
func (r *OrderRepo) Update(ctx context.Context, id string, mutate func(*models.Order) error) (*models.Order, error) {
	var out *models.Order
	err := r.db.Update(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.UpdateTx(tx, id, mutate)
		return err
	})
	return out, err
}

// ChangeBusinessReference gives an order a new out_trade_no. The unique
// entry moves in the same transaction as the record.
func (r *OrderRepo) ChangeBusinessReference(ctx context.Context, id, newOutTradeNo string) (*models.Order, error) {
	newOutTradeNo = strings.TrimSpace(newOutTradeNo)
	if newOutTradeNo == "" {
		return nil, fmt.Errorf("%w: out_trade_no is required", models.ErrInvalidInput)
	}
	return r.Update(ctx, id, func(o *models.Order) error {
		o.OutTradeNo = newOutTradeNo
		return nil
	})
}

func orderCreated(o *models.Order) int64 {
	return o.CreatedAt.UnixNano()
}
