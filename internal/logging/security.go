// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// securityEvent is one audit log entry.
type securityEvent struct {
	// Event names the event, e.g. "payment_invalid_sign", "login_failed".
	Event     string
	UserID    string
	Username  string
	IPAddress string
	Success   bool
	Error     string
	// Details holds extra fields; values are sanitized by key name.
	Details map[string]string
}

// SecurityLogger writes security events with sensitive values redacted.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on top of the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: With().Str("component", "security").Logger(),
	}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "security").Logger(),
	}
}

// logEvent writes event. Failed events are logged at warn level.
func (l *SecurityLogger) logEvent(event *securityEvent) {
	e := l.logger.Info()
	if !event.Success {
		e = l.logger.Warn()
	}
	e = e.Str("event", event.Event)

	if event.Success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
	}
	if event.UserID != "" {
		e = e.Str("user_id", sanitizeUserID(event.UserID))
	}
	if event.Username != "" {
		e = e.Str("username", SanitizeUsername(event.Username))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}
	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}
	e.Msg("")
}

// LogLoginSuccess logs a successful login.
func (l *SecurityLogger) LogLoginSuccess(userID, username, ip string) {
	l.logEvent(&securityEvent{
		Event:     "login_success",
		UserID:    userID,
		Username:  username,
		IPAddress: ip,
		Success:   true,
	})
}

// LogLoginFailure logs a failed login.
func (l *SecurityLogger) LogLoginFailure(username, ip, reason string) {
	l.logEvent(&securityEvent{
		Event:     "login_failed",
		Username:  username,
		IPAddress: ip,
		Error:     reason,
	})
}

// LogLogout logs a sign-out that revoked a token.
func (l *SecurityLogger) LogLogout(userID, ip string) {
	l.logEvent(&securityEvent{
		Event:     "logout",
		UserID:    userID,
		IPAddress: ip,
		Success:   true,
	})
}

// LogPasswordChanged logs a password change or admin reset.
func (l *SecurityLogger) LogPasswordChanged(userID, changedBy string) {
	l.logEvent(&securityEvent{
		Event:   "password_changed",
		UserID:  userID,
		Success: true,
		Details: map[string]string{"changed_by": sanitizeUserID(changedBy)},
	})
}

// LogInvalidSignature logs a payment notification that failed verification.
// The supplied sign is masked; the merchant secret never reaches this call.
func (l *SecurityLogger) LogInvalidSignature(outTradeNo, sign, ip string) {
	l.logEvent(&securityEvent{
		Event:     "payment_invalid_sign",
		IPAddress: ip,
		Error:     "signature mismatch",
		Details: map[string]string{
			"out_trade_no": outTradeNo,
			"sign":         sign,
		},
	})
}

// LogConfigurationError logs a refused operation caused by unusable merchant configuration.
func (l *SecurityLogger) LogConfigurationError(operation, reason string) {
	l.logEvent(&securityEvent{
		Event: "payment_config_error",
		Error: reason,
		Details: map[string]string{
			"operation": operation,
		},
	})
}

// SanitizeToken masks a token, showing only the first and last 4 characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// sanitizeUserID keeps the first and last 4 characters of an id.
func sanitizeUserID(userID string) string {
	if userID == "" {
		return ""
	}
	if len(userID) <= 8 {
		return "***"
	}
	return userID[:4] + "..." + userID[len(userID)-4:]
}

// SanitizeUsername keeps the first 2 characters of a username.
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeEmail masks the local part of an email address.
// Example: "john.doe@example.com" -> "jo***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

// sensitivePatterns mark error messages that may carry secrets.
var sensitivePatterns = []string{
	"password",
	"secret",
	"token",
	"key",
	"bearer",
	"authorization",
}

// SanitizeError replaces error messages that mention secrets with a generic one.
func SanitizeError(err string) string {
	lower := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lower, pattern) {
			return "redacted error"
		}
	}
	return truncateString(err, 200)
}

var sensitiveKeys = map[string]bool{
	"access_token":  true,
	"refresh_token": true,
	"token":         true,
	"password":      true,
	"secret":        true,
	"key":           true,
	"merchant_key":  true,
	"sign":          true,
	"authorization": true,
	"bearer":        true,
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		return SanitizeToken(value)
	}
	if strings.Contains(value, "@") && strings.Contains(value, ".") {
		return SanitizeEmail(value)
	}
	return value
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
