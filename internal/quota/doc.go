// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package quota implements the per-account link quota ledger.
//
// Admin accounts are unlimited: charges only count usage. For everyone else a
// charge either covers the full quantity or changes nothing.
//
// Which issuance paths consult the ledger is an explicit rule, PolicyFor:
// links paid out of quota are charged, links minted for a paid order are
// prepaid and never touch the ledger.
package quota
