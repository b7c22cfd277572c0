// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"short", "abc", "***"},
		{"twelve", "123456789012", "***"},
		{"md5 sign", "0123456789abcdef0123456789abcdef", "0123...cdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeToken(tt.input); got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***"},
	}
	for _, tt := range tests {
		if got := SanitizeEmail(tt.input); got != tt.want {
			t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeValue(t *testing.T) {
	if got := SanitizeValue("sign", "0123456789abcdef0123456789abcdef"); got != "0123...cdef" {
		t.Errorf("sign not masked: %q", got)
	}
	if got := SanitizeValue("out_trade_no", "T1"); got != "T1" {
		t.Errorf("plain value changed: %q", got)
	}
	if got := SanitizeValue("contact", "alice@example.com"); got != "al***@example.com" {
		t.Errorf("email-like value not masked: %q", got)
	}
}

func TestSanitizeError(t *testing.T) {
	if got := SanitizeError("merchant key rejected"); got != "redacted error" {
		t.Errorf("expected redaction, got %q", got)
	}
	if got := SanitizeError("signature mismatch"); got != "signature mismatch" {
		t.Errorf("unexpected change: %q", got)
	}
}

func TestSecurityLogger_InvalidSignatureIsRedacted(t *testing.T) {
	var buf bytes.Buffer
	sl := NewSecurityLoggerWithLogger(NewTestLogger(&buf))

	sign := "deadbeefdeadbeefdeadbeefdeadbeef"
	sl.LogInvalidSignature("T1", sign, "10.0.0.1")

	out := buf.String()
	if strings.Contains(out, sign) {
		t.Fatalf("raw sign leaked into log: %s", out)
	}
	for _, want := range []string{`"event":"payment_invalid_sign"`, `"status":"failed"`, `"out_trade_no":"T1"`, `"level":"warn"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got: %s", want, out)
		}
	}
}

func TestSecurityLogger_LoginSuccess(t *testing.T) {
	var buf bytes.Buffer
	sl := NewSecurityLoggerWithLogger(NewTestLogger(&buf))

	sl.LogLoginSuccess("acct-1234567890", "alice", "127.0.0.1")

	out := buf.String()
	if !strings.Contains(out, `"username":"al***"`) {
		t.Errorf("username not masked: %s", out)
	}
	if !strings.Contains(out, `"status":"success"`) {
		t.Errorf("missing status: %s", out)
	}
}

func TestSecurityLogger_LogoutMasksUserID(t *testing.T) {
	var buf bytes.Buffer
	sl := NewSecurityLoggerWithLogger(NewTestLogger(&buf))

	sl.LogLogout("acct-1234567890", "127.0.0.1")

	out := buf.String()
	for _, want := range []string{`"event":"logout"`, `"user_id":"acct...7890"`, `"level":"info"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got: %s", want, out)
		}
	}
	if strings.Contains(out, "acct-1234567890") {
		t.Errorf("raw user id leaked: %s", out)
	}
}
