// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package zpay implements the zpay gateway signing scheme: a canonical
// sorted k=v payload suffixed with the merchant key and hashed with MD5.
// The same CanonicalPayload serves outbound payment URLs and inbound
// notification verification.
package zpay
