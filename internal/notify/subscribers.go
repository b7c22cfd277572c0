// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package notify

import (
	"context"
	"fmt"

	"github.com/tomtom215/assesslink/internal/events"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
)

// Register subscribes the notification handlers to bus.
func (s *Service) Register(bus *events.Bus) {
	events.Subscribe(bus, "notify.order-paid", events.TopicOrderPaid, s.OnOrderPaid)
	events.Subscribe(bus, "notify.link-redeemed", events.TopicLinkRedeemed, s.OnLinkRedeemed)
	events.Subscribe(bus, "notify.quota-low", events.TopicQuotaLow, s.OnQuotaLow)
}

// OnOrderPaid tells the buyer their link is ready. Anonymous orders have no
// inbox and are skipped.
func (s *Service) OnOrderPaid(ctx context.Context, e events.OrderPaid) error {
	if e.UserID == "" {
		return nil
	}
	logging.Ctx(ctx).Debug().Str("order_id", e.OrderID).Msg("Creating payment notification")
	return s.Create(ctx, &models.Notification{
		UserID:  e.UserID,
		Type:    models.NotificationPaymentSuccess,
		Title:   "Payment received",
		Message: fmt.Sprintf("Order %s is paid. Your %s link is ready.", e.OutTradeNo, e.QuestionnaireType),
		LinkID:  e.LinkID,
		Metadata: map[string]string{
			"orderId":    e.OrderID,
			"outTradeNo": e.OutTradeNo,
			"money":      e.Money,
		},
	})
}

// OnLinkRedeemed tells the link owner that a test was completed.
func (s *Service) OnLinkRedeemed(ctx context.Context, e events.LinkRedeemed) error {
	if e.OwnerID == "" {
		return nil
	}
	return s.Create(ctx, &models.Notification{
		UserID:   e.OwnerID,
		Type:     models.NotificationCompleted,
		Title:    "Assessment completed",
		Message:  fmt.Sprintf("A %s assessment was completed.", e.QuestionnaireType),
		LinkID:   e.LinkID,
		ReportID: e.ReportID,
	})
}

// OnQuotaLow warns an account that its quota is nearly used up.
func (s *Service) OnQuotaLow(ctx context.Context, e events.QuotaLow) error {
	return s.Create(ctx, &models.Notification{
		UserID:  e.AccountID,
		Type:    models.NotificationQuotaWarning,
		Title:   "Quota running low",
		Message: fmt.Sprintf("You have %d links left.", e.Remaining),
		Metadata: map[string]string{
			"remaining": fmt.Sprint(e.Remaining),
			"threshold": fmt.Sprint(e.Threshold),
		},
	})
}
