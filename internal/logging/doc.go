// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package logging provides the process-wide zerolog logger for Assesslink.
//
// Initialize once at startup and log with structured fields:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("backend", "badger").Msg("Store opened")
//	logging.Ctx(ctx).Warn().Str("link_id", id).Msg("Redemption rejected")
//
// Ctx attaches request_id and correlation_id stored by the HTTP middleware or by
// background jobs. Always terminate a chain with Msg() or Send(); an
// unterminated event is never written.
//
// SecurityLogger records authentication and payment-verification events. Values
// under sensitive keys (sign, key, token, password) are masked before they are
// written, and the merchant secret is never passed to it.
//
// NewSlogLogger bridges to log/slog for libraries such as sutureslog.
package logging
