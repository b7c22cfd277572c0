// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package models

// Principal is the verified caller identity supplied by the auth layer.
type Principal struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Role     Role   `json:"role"`
	// TokenID identifies the bearer token the principal was read from.
	TokenID string `json:"-"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether the principal may act on a resource owned by ownerID.
func (p Principal) CanAccess(ownerID string) bool {
	return p.IsAdmin() || (ownerID != "" && p.UserID == ownerID)
}
