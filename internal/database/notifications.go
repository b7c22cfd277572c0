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

const notificationIndexUser = "user"

// NotificationRepo stores notifications, indexed by recipient.
type NotificationRepo struct {
	db   *DB
	coll *store.Collection[models.Notification]
}

func newNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{
		db: db,
		coll: store.NewCollection(store.Schema[models.Notification]{
			Namespace: "notifications",
			ID:        func(n *models.Notification) string { return n.ID },
			SetID:     func(n *models.Notification, id string) { n.ID = id },
			NewID:     func() string { return NewID(PrefixNotification) },
			Owners: []store.Index[models.Notification]{
				{Name: notificationIndexUser, Key: func(n *models.Notification) string { return n.UserID }},
			},
		}),
	}
}

// CreateTx stores a new unread notification.
func (r *NotificationRepo) CreateTx(tx *store.Tx, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.db.now()
	}
	return translate(r.coll.Create(tx, n))
}

// Create stores a new notification in its own transaction.
func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return r.db.Update(ctx, func(tx *store.Tx) error {
		return r.CreateTx(tx, n)
	})
}

// Get loads a notification by id.
func (r *NotificationRepo) Get(ctx context.Context, id string) (*models.Notification, error) {
	var out *models.Notification
	err := r.db.View(ctx, func(tx *store.Tx) error {
		n, err := r.coll.Get(tx, id)
		if err != nil {
			return notFound("notification", id, err)
		}
		out = n
		return nil
	})
	return out, err
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	var out []*models.Notification
	err := r.db.View(ctx, func(tx *store.Tx) error {
		list, err := r.coll.ListBy(tx, notificationIndexUser, userID)
		if err != nil {
			return translate(err)
		}
		out = list
		return nil
	})
	sortNewestFirst(out, func(n *models.Notification) int64 { return n.CreatedAt.UnixNano() })
	return out, err
}

// UpdateTx applies mutate to the stored notification.
func (r *NotificationRepo) UpdateTx(tx *store.Tx, id string, mutate func(*models.Notification) error) (*models.Notification, error) {
	n, err := r.coll.Update(tx, id, mutate)
	if err != nil {
		return nil, notFound("notification", id, err)
	}
	return n, nil
}

// Update applies mutate to the stored notification in its own transaction.
func (r *NotificationRepo) Update(ctx context.Context, id string, mutate func(*models.Notification) error) (*models.Notification, error) {
	var out *models.Notification
	err := r.db.Update(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.UpdateTx(tx, id, mutate)
		return err
	})
	return out, err
}

// DeleteTx removes a notification.
func (r *NotificationRepo) DeleteTx(tx *store.Tx, id string) error {
	if err := r.coll.Delete(tx, id); err != nil {
		return notFound("notification", id, err)
	}
	return nil
}

// Delete removes a notification in its own transaction.
func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	return r.db.Update(ctx, func(tx *store.Tx) error {
		return r.DeleteTx(tx, id)
	})
}

// GetTx loads a notification by id.
func (r *NotificationRepo) GetTx(tx *store.Tx, id string) (*models.Notification, error) {
	n, err := r.coll.Get(tx, id)
	if err != nil {
		return nil, notFound("notification", id, err)
	}
	return n, nil
}

// MarkAllRead marks every unread notification of userID as read and returns
// how many changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.Update(ctx, func(tx *store.Tx) error {
		n = 0
		list, err := r.coll.ListBy(tx, notificationIndexUser, userID)
		if err != nil {
			return translate(err)
		}
		for _, item := range list {
			if item.Read {
				continue
			}
			if _, err := r.UpdateTx(tx, item.ID, func(x *models.Notification) error {
				x.Read = true
				return nil
			}); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}
