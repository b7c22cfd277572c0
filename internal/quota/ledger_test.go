// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/metrics"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

func TestPolicyFor(t *testing.T) {
	if PolicyFor(models.SourceQuota) != ChargeQuota {
		t.Error("quota links must be charged")
	}
	if PolicyFor(models.SourcePayment) != Prepaid {
		t.Error("payment links must be prepaid")
	}
	if Prepaid.String() != "prepaid" || ChargeQuota.String() != "charge_quota" {
		t.Error("unexpected policy names")
	}
}

func TestCharge(t *testing.T) {
	tests := []struct {
		name          string
		acct          models.Account
		qty           int
		wantErr       error
		wantRemaining int
		wantUsed      int
	}{
		{"sufficient", models.Account{Role: models.RoleUser, RemainingQuota: 5}, 3, nil, 2, 3},
		{"exact", models.Account{Role: models.RoleUser, RemainingQuota: 3, UsedQuota: 1}, 3, nil, 0, 4},
		{"insufficient leaves account unchanged", models.Account{Role: models.RoleUser, RemainingQuota: 2, UsedQuota: 3}, 3, models.ErrQuotaExceeded, 2, 3},
		{"admin is unlimited", models.Account{Role: models.RoleAdmin, RemainingQuota: 0}, 50, nil, 0, 50},
		{"zero quantity", models.Account{Role: models.RoleUser, RemainingQuota: 5}, 0, models.ErrInvalidInput, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.acct
			err := Charge(&a, tt.qty)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Charge() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Charge() error = %v, want %v", err, tt.wantErr)
			}
			if a.RemainingQuota != tt.wantRemaining || a.UsedQuota != tt.wantUsed {
				t.Errorf("remaining=%d used=%d, want %d/%d", a.RemainingQuota, a.UsedQuota, tt.wantRemaining, tt.wantUsed)
			}
		})
	}
}

func TestGrant(t *testing.T) {
	a := models.Account{RemainingQuota: 1, TotalQuota: 4}
	if err := Grant(&a, 10); err != nil {
		t.Fatal(err)
	}
	if a.RemainingQuota != 11 || a.TotalQuota != 14 {
		t.Errorf("after grant: %+v", a)
	}
	if err := Grant(&a, -1); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("negative grant = %v", err)
	}
}

func TestLedger_ChargeTxRollsBackWithTransaction(t *testing.T) {
	db := database.NewMemory()
	ctx := context.Background()
	a := &models.Account{Username: "erin", Email: "erin@example.com", Role: models.RoleUser, RemainingQuota: 5}
	if err := db.Accounts.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	l := NewLedger(db, 2)

	before := testutil.ToFloat64(metrics.QuotaRejections)
	err := db.Update(ctx, func(tx *store.Tx) error {
		_, err := l.ChargeTx(tx, a.ID, 6)
		return err
	})
	if !errors.Is(err, models.ErrQuotaExceeded) {
		t.Fatalf("ChargeTx = %v", err)
	}
	if got := testutil.ToFloat64(metrics.QuotaRejections) - before; got != 1 {
		t.Errorf("rejections recorded = %v", got)
	}

	// A later failure in the same transaction undoes the charge.
	boom := errors.New("boom")
	err = db.Update(ctx, func(tx *store.Tx) error {
		if _, err := l.ChargeTx(tx, a.ID, 2); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update = %v", err)
	}
	bal, err := l.Balance(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if bal.Remaining != 5 || bal.Used != 0 {
		t.Errorf("balance after rollback = %+v", bal)
	}

	var charged *models.Account
	err = db.Update(ctx, func(tx *store.Tx) error {
		var err error
		charged, err = l.ChargeTx(tx, a.ID, 3)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if !l.Low(charged) {
		t.Errorf("remaining %d should be low at threshold 2", charged.RemainingQuota)
	}

	granted, err := l.Grant(ctx, a.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if granted.RemainingQuota != 12 || granted.TotalQuota != 10 || l.Low(granted) {
		t.Errorf("after grant = %+v", granted)
	}
}
