// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package models

import "time"

// LinkStatus is the redemption state of a link.
type LinkStatus string

const (
	LinkUnused   LinkStatus = "unused"
	LinkUsed     LinkStatus = "used"
	LinkExpired  LinkStatus = "expired"
	LinkDisabled LinkStatus = "disabled"
)

// Valid reports whether s is a known link status.
func (s LinkStatus) Valid() bool {
	switch s {
	case LinkUnused, LinkUsed, LinkExpired, LinkDisabled:
		return true
	}
	return false
}

// LinkSource records which issuance path minted a link.
type LinkSource string

const (
	// SourceQuota links were paid for out of an account's quota.
	SourceQuota LinkSource = "quota"
	// SourcePayment links were minted by reconciling a paid order.
	SourcePayment LinkSource = "payment"
)

// Link is a single-use access token for one questionnaire.
type Link struct {
	ID                string     `json:"id"`
	URL               string     `json:"url"`
	QuestionnaireType string     `json:"questionnaireType"`
	Status            LinkStatus `json:"status"`
	CreatedBy         string     `json:"createdBy,omitempty"`
	Source            LinkSource `json:"source"`
	OrderID           string     `json:"orderId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	UsedAt            *time.Time `json:"usedAt,omitempty"`
	// ExpiredAt is the expiry deadline; the sweeper flips due unused links to expired.
	ExpiredAt *time.Time `json:"expiredAt,omitempty"`
	ReportID  string     `json:"reportId,omitempty"`
}

// Redeemed reports whether the link has ever been redeemed, regardless of
// its current status. An admin override can move a redeemed link out of
// "used", but it can never be redeemed again.
func (l *Link) Redeemed() bool {
	return l.UsedAt != nil || l.ReportID != ""
}

// DueForExpiry reports whether an unused link has passed its deadline.
func (l *Link) DueForExpiry(now time.Time) bool {
	return l.Status == LinkUnused && l.ExpiredAt != nil && !l.ExpiredAt.After(now)
}
