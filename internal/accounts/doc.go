// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package accounts implements account registration, login and self-service
profile operations, plus the admin surface for managing accounts.

Registration creates a pending user with no quota; an admin activates it
and grants quota through the ledger. While no admin exists, the first
registrant becomes an active admin. EnsureAdmin seeds the configured admin
at startup so a production deployment never relies on that path.

Login is guarded by a LockoutManager keyed by the normalised username.
Unknown usernames still pay for a bcrypt comparison, so response time does
not reveal which usernames exist.
*/
package accounts
