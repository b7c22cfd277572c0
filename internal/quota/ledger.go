// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/metrics"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

// Policy says whether an issuance path is charged against the ledger.
type Policy int

const (
	// ChargeQuota deducts one unit per link from the issuer's quota.
	ChargeQuota Policy = iota
	// Prepaid links were bought outright; the ledger is not consulted.
	Prepaid
)

func (p Policy) String() string {
	switch p {
	case ChargeQuota:
		return "charge_quota"
	case Prepaid:
		return "prepaid"
	default:
		return "unknown"
	}
}

// PolicyFor returns the ledger policy for links minted from source.
func PolicyFor(source models.LinkSource) Policy {
	if source == models.SourcePayment {
		return Prepaid
	}
	return ChargeQuota
}

// Balance is a read-only view of an account's quota.
type Balance struct {
	Remaining int  `json:"remaining"`
	Used      int  `json:"used"`
	Total     int  `json:"total"`
	Unlimited bool `json:"unlimited"`
}

// BalanceOf returns the quota view of a.
func BalanceOf(a *models.Account) Balance {
	return Balance{
		Remaining: a.RemainingQuota,
		Used:      a.UsedQuota,
		Total:     a.TotalQuota,
		Unlimited: a.IsAdmin(),
	}
}

// CheckSufficient reports whether a can cover qty links.
func CheckSufficient(a *models.Account, qty int) bool {
	return a.IsAdmin() || a.RemainingQuota >= qty
}

// Charge deducts qty from a. On ErrQuotaExceeded a is unchanged.
func Charge(a *models.Account, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", models.ErrInvalidInput)
	}
	if !CheckSufficient(a, qty) {
		return fmt.Errorf("%w: %d requested, %d remaining", models.ErrQuotaExceeded, qty, a.RemainingQuota)
	}
	if !a.IsAdmin() {
		a.RemainingQuota = max(0, a.RemainingQuota-qty)
	}
	a.UsedQuota += qty
	return nil
}

// Grant tops a up by qty.
func Grant(a *models.Account, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", models.ErrInvalidInput)
	}
	a.RemainingQuota += qty
	a.TotalQuota += qty
	return nil
}

// Ledger applies quota changes to stored accounts.
type Ledger struct {
	db               *database.DB
	warningThreshold int
}

// NewLedger returns a ledger that flags balances at or below warningThreshold.
func NewLedger(db *database.DB, warningThreshold int) *Ledger {
	return &Ledger{db: db, warningThreshold: warningThreshold}
}

// ChargeTx charges accountID inside tx, so the charge commits or rolls back
// together with whatever the caller writes next.
func (l *Ledger) ChargeTx(tx *store.Tx, accountID string, qty int) (*models.Account, error) {
	a, err := l.db.Accounts.UpdateTx(tx, accountID, func(a *models.Account) error {
		return Charge(a, qty)
	})
	if errors.Is(err, models.ErrQuotaExceeded) {
		metrics.RecordQuotaRejection()
	}
	return a, err
}

// Grant tops up accountID in its own transaction.
func (l *Ledger) Grant(ctx context.Context, accountID string, qty int) (*models.Account, error) {
	return l.db.Accounts.Update(ctx, accountID, func(a *models.Account) error {
		return Grant(a, qty)
	})
}

// Balance returns the stored balance of accountID.
func (l *Ledger) Balance(ctx context.Context, accountID string) (Balance, error) {
	a, err := l.db.Accounts.Get(ctx, accountID)
	if err != nil {
		return Balance{}, err
	}
	return BalanceOf(a), nil
}

// Low reports whether a non-admin balance is at or below the warning threshold.
func (l *Ledger) Low(a *models.Account) bool {
	return !a.IsAdmin() && a.RemainingQuota <= l.warningThreshold
}

// WarningThreshold returns the configured threshold.
func (l *Ledger) WarningThreshold() int {
	return l.warningThreshold
}
