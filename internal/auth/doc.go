// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package auth authenticates API callers.

Components:
  - JWTManager: HS256 access tokens carrying the account id and role
  - PasswordHasher: bcrypt hashing and verification
  - Middleware: Bearer token extraction into a models.Principal on the
    request context
  - LockoutManager: per-username lockout after repeated failed logins,
    with exponential backoff

Tokens are stateless. A disabled account keeps a valid token until it
expires; Middleware only checks the signature and expiry, and handlers
that need fresh account state load it themselves.
*/
package auth
