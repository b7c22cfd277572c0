// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/zpay"
)

// ConfigurationError reports an invalid setting. It matches models.ErrConfiguration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, models.ErrConfiguration) match.
func (e *ConfigurationError) Unwrap() error {
	return models.ErrConfiguration
}

func invalid(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateStorage,
		c.validatePayment,
		c.validateSecurity,
		c.validateLinks,
		c.validateEvents,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("HTTP_PORT", "must be between 1 and 65535")
	}
	if err := validateHTTPURL(c.Server.PublicBaseURL); err != nil {
		return invalid("PUBLIC_BASE_URL", "is invalid: %v", err)
	}
	return nil
}

var validBackends = map[string]bool{
	"badger": true,
	"memory": true,
}

// validateStorage validates the backend selection and retry/breaker bounds
func (c *Config) validateStorage() error {
	s := c.Storage
	if !validBackends[s.Backend] {
		return invalid("STORAGE_BACKEND", "must be one of: badger, memory")
	}
	if s.Backend == "badger" && !s.InMemory && s.Path == "" {
		return invalid("STORAGE_PATH", "is required for the badger backend")
	}
	if s.MaxRetries < 0 || s.MaxRetries > 100 {
		return invalid("STORAGE_MAX_RETRIES", "must be between 0 and 100")
	}
	if s.RetryInitialInterval <= 0 || s.RetryMaxInterval < s.RetryInitialInterval {
		return invalid("STORAGE_RETRY_MAX_INTERVAL", "must be >= STORAGE_RETRY_INITIAL_INTERVAL > 0")
	}
	if s.BreakerFailures < 0 {
		return invalid("STORAGE_BREAKER_FAILURES", "must not be negative")
	}
	if s.BreakerFailures > 0 && s.BreakerTimeout <= 0 {
		return invalid("STORAGE_BREAKER_TIMEOUT", "must be positive when the breaker is enabled")
	}
	if s.GCRatio < 0 || s.GCRatio >= 1 {
		return invalid("STORAGE_GC_RATIO", "must be in [0, 1)")
	}
	return nil
}

// validatePayment refuses to enable checkout with a missing or placeholder merchant key
func (c *Config) validatePayment() error {
	p := c.Payment
	if !p.Enabled {
		return nil
	}
	if p.PID == "" {
		return invalid("ZPAY_PID", "is required when PAYMENT_ENABLED=true")
	}
	if err := zpay.CheckSecret(p.Key); err != nil {
		return invalid("ZPAY_KEY", "is unusable: %v", err)
	}
	if _, err := url.ParseRequestURI(p.GatewayURL); err != nil {
		return invalid("ZPAY_GATEWAY_URL", "is invalid: %v", err)
	}
	if p.NotifyURL == "" {
		return invalid("ZPAY_NOTIFY_URL", "is required when PAYMENT_ENABLED=true")
	}
	if p.OrderTTL < time.Minute {
		return invalid("PAYMENT_ORDER_TTL", "must be at least 1m")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateSecurity validates JWT, bcrypt, CORS, and rate limit settings
func (c *Config) validateSecurity() error {
	s := c.Security
	if s.JWTSecret == "" {
		return invalid("JWT_SECRET", "is required")
	}
	if len(s.JWTSecret) < 32 {
		return invalid("JWT_SECRET", "must be at least 32 characters for security")
	}
	if containsPlaceholder(s.JWTSecret) {
		return invalid("JWT_SECRET", "contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	if s.TokenTTL < time.Minute {
		return invalid("TOKEN_TTL", "must be at least 1m")
	}
	if s.BcryptCost < 4 || s.BcryptCost > 31 {
		return invalid("BCRYPT_COST", "must be between 4 and 31")
	}
	if c.hasWildcardCORS() && c.IsProduction() {
		return invalid("CORS_ORIGINS", "=* (wildcard) is not allowed in production; set specific origins")
	}
	if !s.RateLimitDisabled {
		if s.RateLimitReqs < minRateLimitRequests || s.RateLimitReqs > maxRateLimitRequests {
			return invalid("RATE_LIMIT_REQUESTS", "must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
		}
		if s.RateLimitWindow < minRateLimitWindow || s.RateLimitWindow > maxRateLimitWindow {
			return invalid("RATE_LIMIT_WINDOW", "must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
		}
	}
	return c.validateAdminCredentials()
}

// validateAdminCredentials applies the admin password policy when a bootstrap admin is configured
func (c *Config) validateAdminCredentials() error {
	s := c.Security
	if s.AdminUsername == "" && s.AdminPassword == "" {
		return nil
	}
	if s.AdminUsername == "" {
		return invalid("ADMIN_USERNAME", "is required when ADMIN_PASSWORD is set")
	}
	if s.AdminPassword == "" {
		return invalid("ADMIN_PASSWORD", "is required when ADMIN_USERNAME is set")
	}
	if containsPlaceholder(s.AdminPassword) {
		return invalid("ADMIN_PASSWORD", "contains a placeholder value - set a secure password")
	}
	if err := DefaultPasswordPolicy().ValidateWithError(s.AdminPassword, s.AdminUsername); err != nil {
		return invalid("ADMIN_PASSWORD", "%v", err)
	}
	return nil
}

func (c *Config) validateLinks() error {
	if c.Links.MaxBatch < 1 || c.Links.MaxBatch > 1000 {
		return invalid("LINKS_MAX_BATCH", "must be between 1 and 1000")
	}
	if c.Links.SweepInterval < time.Second {
		return invalid("LINKS_SWEEP_INTERVAL", "must be at least 1s")
	}
	if c.Links.SweepRate <= 0 {
		return invalid("LINKS_SWEEP_RATE", "must be positive")
	}
	if c.Quota.WarningThreshold < 0 {
		return invalid("QUOTA_WARNING_THRESHOLD", "must not be negative")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.Buffer < 0 {
		return invalid("EVENTS_BUFFER", "must not be negative")
	}
	if c.Events.Retries < 0 {
		return invalid("EVENTS_RETRIES", "must not be negative")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return invalid("LOG_LEVEL", "must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return invalid("LOG_FORMAT", "must be one of: json, console")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if the CORS configuration should be flagged at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// validateHTTPURL checks for an absolute http(s) URL without query parameters.
func validateHTTPURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	if u.RawQuery != "" {
		return errors.New("must not contain query parameters")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"XXX",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
