// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package models defines the persisted entities (Account, Link, Questionnaire,
// Notification, Order), their status enums, and the error taxonomy used by
// every layer above the record store.
package models
