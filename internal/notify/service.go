// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
	"github.com/tomtom215/assesslink/internal/websocket"
)

// Filter narrows a notification listing.
type Filter struct {
	Type     models.NotificationType
	Read     *bool
	Page     int
	PageSize int
}

// Listing is a page of notifications plus the unread count of the filtered set.
type Listing struct {
	models.Page[*models.Notification]
	UnreadCount int `json:"unreadCount"`
}

// Pusher forwards a stored notification to the recipient's open
// connections. *websocket.Hub implements it.
type Pusher interface {
	SendToUser(userID, msgType string, data any) bool
}

// Service is the notification inbox of each account.
type Service struct {
	db     *database.DB
	pusher Pusher
}

// NewService returns a Service over db.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// SetPusher enables live delivery of new notifications.
func (s *Service) SetPusher(p Pusher) {
	s.pusher = p
}

// Create stores a notification for n.UserID and pushes it to the
// recipient's live connections, if any.
func (s *Service) Create(ctx context.Context, n *models.Notification) error {
	if n.UserID == "" {
		return fmt.Errorf("%w: notification without recipient", models.ErrInvalidInput)
	}
	if err := s.db.Notifications.Create(ctx, n); err != nil {
		return err
	}
	if s.pusher != nil {
		s.pusher.SendToUser(n.UserID, websocket.MessageTypeNotification, n)
	}
	return nil
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, p models.Principal, f Filter) (Listing, error) {
	all, err := s.db.Notifications.ListByUser(ctx, p.UserID)
	if err != nil {
		return Listing{}, err
	}
	filtered := make([]*models.Notification, 0, len(all))
	unread := 0
	for _, n := range all {
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		if f.Read != nil && n.Read != *f.Read {
			continue
		}
		if !n.Read {
			unread++
		}
		filtered = append(filtered, n)
	}
	return Listing{
		Page:        models.Paginate(filtered, f.Page, f.PageSize),
		UnreadCount: unread,
	}, nil
}

// UnreadCount returns how many of the caller's notifications are unread.
func (s *Service) UnreadCount(ctx context.Context, p models.Principal) (int, error) {
	all, err := s.db.Notifications.ListByUser(ctx, p.UserID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range all {
		if !item.Read {
			n++
		}
	}
	return n, nil
}

// owned loads id inside tx and checks it belongs to the caller.
func (s *Service) owned(tx *store.Tx, p models.Principal, id string) (*models.Notification, error) {
	n, err := s.db.Notifications.GetTx(tx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != p.UserID {
		return nil, fmt.Errorf("%w: notification %q belongs to another account", models.ErrForbidden, id)
	}
	return n, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *Service) MarkRead(ctx context.Context, p models.Principal, id string) (*models.Notification, error) {
	var out *models.Notification
	err := s.db.Update(ctx, func(tx *store.Tx) error {
		if _, err := s.owned(tx, p, id); err != nil {
			return err
		}
		var err error
		out, err = s.db.Notifications.UpdateTx(tx, id, func(n *models.Notification) error {
			n.Read = true
			return nil
		})
		return err
	})
	return out, err
}

// MarkManyRead marks the given notifications read and returns how many
// changed. Ids that are missing or belong to someone else are skipped.
func (s *Service) MarkManyRead(ctx context.Context, p models.Principal, ids []string) (int, error) {
	marked := 0
	err := s.db.Update(ctx, func(tx *store.Tx) error {
		marked = 0
		for _, id := range ids {
			n, err := s.owned(tx, p, id)
			if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrForbidden) {
				continue
			}
			if err != nil {
				return err
			}
			if n.Read {
				continue
			}
			if _, err := s.db.Notifications.UpdateTx(tx, id, func(n *models.Notification) error {
				n.Read = true
				return nil
			}); err != nil {
				return err
			}
			marked++
		}
		return nil
	})
	return marked, err
}

// MarkAllRead marks every notification of the caller as read.
func (s *Service) MarkAllRead(ctx context.Context, p models.Principal) (int, error) {
	return s.db.Notifications.MarkAllRead(ctx, p.UserID)
}

// Delete removes one of the caller's notifications.
func (s *Service) Delete(ctx context.Context, p models.Principal, id string) error {
	return s.db.Update(ctx, func(tx *store.Tx) error {
		if _, err := s.owned(tx, p, id); err != nil {
			return err
		}
		return s.db.Notifications.DeleteTx(tx, id)
	})
}

// BatchDelete removes the caller's notifications among ids and returns how
// many were deleted.
func (s *Service) BatchDelete(ctx context.Context, p models.Principal, ids []string) (int, error) {
	deleted := 0
	err := s.db.Update(ctx, func(tx *store.Tx) error {
		deleted = 0
		for _, id := range ids {
			_, err := s.owned(tx, p, id)
			if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrForbidden) {
				continue
			}
			if err != nil {
				return err
			}
			if err := s.db.Notifications.DeleteTx(tx, id); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}
