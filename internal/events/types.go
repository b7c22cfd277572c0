// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package events

import (
	"context"
	"time"
)

// Topic names.
const (
	TopicOrderPaid    = "order.paid"
	TopicLinkRedeemed = "link.redeemed"
	TopicQuotaLow     = "quota.low"
)

// OrderPaid is published once per order, when reconciliation marks it paid.
type OrderPaid struct {
	OrderID           string    `json:"orderId"`
	OutTradeNo        string    `json:"outTradeNo"`
	UserID            string    `json:"userId,omitempty"`
	LinkID            string    `json:"linkId"`
	QuestionnaireType string    `json:"questionnaireType"`
	Money             string    `json:"money"`
	PaidAt            time.Time `json:"paidAt"`
}

// LinkRedeemed is published when a test taker completes a link.
type LinkRedeemed struct {
	LinkID            string    `json:"linkId"`
	OwnerID           string    `json:"ownerId,omitempty"`
	ReportID          string    `json:"reportId"`
	QuestionnaireType string    `json:"questionnaireType"`
	UsedAt            time.Time `json:"usedAt"`
}

// QuotaLow is published when a charge leaves an account at or below the
// warning threshold.
type QuotaLow struct {
	AccountID string `json:"accountId"`
	Remaining int    `json:"remaining"`
	Threshold int    `json:"threshold"`
}

// Publisher publishes a payload to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, string, any) error { return nil }
