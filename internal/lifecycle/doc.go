// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package lifecycle owns assessment links from issuance to redemption.

Status transitions:

	unused   -> used       redemption only
	unused   -> expired    sweeper, or an admin
	unused   -> disabled   owner or admin
	used     -> disabled   owner or admin
	disabled -> unused     owner or admin, never-redeemed links
	disabled -> used       owner or admin, redeemed links
	expired  -> unused     admin
	any      -> any        ForceStatus, admin

Every multi-step change (charge quota and create links, redeem, toggle)
runs in one optimistic store transaction, so two concurrent redemptions of
the same link can never both commit. Post-commit events (link.redeemed,
quota.low) go to the configured events.Publisher.

The expiry sweeper (ExpireDue) is paced by a token-bucket limiter so a
backlog of due links does not starve request traffic.
*/
package lifecycle
