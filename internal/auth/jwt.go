// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/assesslink/internal/cache"
	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/models"
)

const issuer = "assesslink"

// Claims represents JWT claims. Subject holds the account id.
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the caller identity.
func (c *Claims) Principal() models.Principal {
	return models.Principal{UserID: c.Subject, Username: c.Username, Role: c.Role, TokenID: c.ID}
}

// JWTManager handles JWT token creation and validation
type JWTManager struct {
	secret  []byte
	timeout time.Duration
	now     func() time.Time
	// revoked holds ids of tokens signed out before expiry. Entries live
	// as long as a token can, so a revoked id never outlives its token's
	// validity window unless evicted for capacity.
	revoked *cache.LRU[struct{}]
}

const maxRevokedTokens = 50000

// NewJWTManager creates a token manager with the configured secret and TTL.
// The secret must be non-empty; config validation enforces its length.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	timeout := cfg.TokenTTL
	if timeout <= 0 {
		timeout = 24 * time.Hour
	}
	return &JWTManager{
		secret:  []byte(cfg.JWTSecret),
		timeout: timeout,
		now:     time.Now,
		revoked: cache.NewLRU[struct{}](maxRevokedTokens, timeout),
	}, nil
}

// GenerateToken signs a token for the account and returns it with its expiry.
func (m *JWTManager) GenerateToken(a *models.Account) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.timeout)
	claims := &Claims{
		Username: a.Username,
		Role:     a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   a.ID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// ValidateToken verifies the signature, algorithm, issuer and expiry of a
// token and returns its claims. Tokens signed with anything but HMAC are
// rejected to rule out algorithm confusion.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token claims", models.ErrUnauthorized)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrUnauthorized, claims.Role)
	}
	if claims.ID != "" {
		if _, revoked := m.revoked.Get(claims.ID); revoked {
			return nil, fmt.Errorf("%w: token has been signed out", models.ErrUnauthorized)
		}
	}
	return claims, nil
}

// Revoke rejects the token with the given id from now on. An empty id is
// ignored.
func (m *JWTManager) Revoke(tokenID string) {
	if tokenID == "" {
		return
	}
	m.revoked.Add(tokenID, struct{}{})
}
