// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package models

import (
	"strings"
	"time"
)

// Role is an account's authorization role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// AccountStatus gates login.
type AccountStatus string

const (
	AccountPending  AccountStatus = "pending"
	AccountActive   AccountStatus = "active"
	AccountDisabled AccountStatus = "disabled"
)

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountPending, AccountActive, AccountDisabled:
		return true
	}
	return false
}

// Account is a platform user. PasswordHash is persisted under "password"
// and must never be rendered to clients; use View.
type Account struct {
	ID             string        `json:"id"`
	Username       string        `json:"username"`
	Email          string        `json:"email"`
	Name           string        `json:"name,omitempty"`
	PasswordHash   string        `json:"password"`
	Role           Role          `json:"role"`
	Status         AccountStatus `json:"status"`
	RemainingQuota int           `json:"remainingQuota"`
	UsedQuota      int           `json:"usedQuota"`
	TotalQuota     int           `json:"totalQuota"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	LastLoginAt    *time.Time    `json:"lastLoginAt,omitempty"`
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// AccountView is the client-facing projection of an Account.
type AccountView struct {
	ID             string        `json:"id"`
	Username       string        `json:"username"`
	Email          string        `json:"email"`
	Name           string        `json:"name,omitempty"`
	Role           Role          `json:"role"`
	Status         AccountStatus `json:"status"`
	RemainingQuota int           `json:"remainingQuota"`
	UsedQuota      int           `json:"usedQuota"`
	TotalQuota     int           `json:"totalQuota"`
	CreatedAt      time.Time     `json:"createdAt"`
	LastLoginAt    *time.Time    `json:"lastLoginAt,omitempty"`
}

// View strips credentials.
func (a *Account) View() AccountView {
	return AccountView{
		ID:             a.ID,
		Username:       a.Username,
		Email:          a.Email,
		Name:           a.Name,
		Role:           a.Role,
		Status:         a.Status,
		RemainingQuota: a.RemainingQuota,
		UsedQuota:      a.UsedQuota,
		TotalQuota:     a.TotalQuota,
		CreatedAt:      a.CreatedAt,
		LastLoginAt:    a.LastLoginAt,
	}
}

// NormalizeUsername is the canonical form used for uniqueness.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail is the canonical form used for uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
