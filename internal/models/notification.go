// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package models

import "time"

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationCompleted      NotificationType = "completed"
	NotificationQuotaWarning   NotificationType = "quota-warning"
	NotificationSystemUpdate   NotificationType = "system-update"
	NotificationPromotion      NotificationType = "promotion"
	NotificationPaymentSuccess NotificationType = "payment-success"
)

// Notification belongs to exactly one account (UserID).
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Read      bool              `json:"read"`
	LinkID    string            `json:"linkId,omitempty"`
	ReportID  string            `json:"reportId,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
