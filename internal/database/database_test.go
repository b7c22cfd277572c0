// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/assesslink/internal/kv"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

// newTestDB returns a memory-backed DB whose clock advances one second per call.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db := NewMemory()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	db.SetClock(func() time.Time {
		return base.Add(time.Duration(tick.Add(1)) * time.Second)
	})
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"not found", store.ErrNotFound, models.ErrNotFound},
		{"duplicate", &store.DuplicateError{Namespace: "accounts", Index: "email"}, models.ErrConflict},
		{"exhausted conflict", fmt.Errorf("gave up: %w", store.ErrConflict), models.ErrConflict},
		{"backend error", &kv.BackendError{Op: "commit", Err: errors.New("io")}, models.ErrBackendUnavailable},
		{"closed", kv.ErrClosed, models.ErrBackendUnavailable},
		{"domain passthrough", models.ErrQuotaExceeded, models.ErrQuotaExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			if !errors.Is(got, tt.want) {
				t.Errorf("translate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if translate(nil) != nil {
		t.Error("translate(nil) != nil")
	}
	plain := errors.New("plain")
	if translate(plain) != plain {
		t.Error("unrelated errors must pass through unchanged")
	}
}

func TestNewID(t *testing.T) {
	id := NewID(PrefixLink)
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != "link" || len(parts[2]) != 8 {
		t.Errorf("NewID = %q", id)
	}
	if strings.Contains(id, ":") {
		t.Errorf("NewID contains key separator: %q", id)
	}
	if NewID(PrefixLink) == id {
		t.Error("NewID repeated")
	}
	otn := NewOutTradeNo()
	if !strings.HasPrefix(otn, "AL") || len(otn) != 2+14+8 {
		t.Errorf("NewOutTradeNo = %q", otn)
	}
}

func TestAccounts_CreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := &models.Account{Username: " Alice ", Email: "Alice@Example.COM", Role: models.RoleUser, Status: models.AccountPending}
	if err := db.Accounts.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(a.ID, "user-") || a.CreatedAt.IsZero() {
		t.Fatalf("created account = %+v", a)
	}
	if a.Username != "Alice" || a.Email != "alice@example.com" {
		t.Errorf("normalised fields = %q %q", a.Username, a.Email)
	}

	got, err := db.Accounts.GetByUsername(ctx, "ALICE")
	if err != nil || got.ID != a.ID {
		t.Errorf("GetByUsername = %v, %v", got, err)
	}
	got, err = db.Accounts.GetByEmail(ctx, " alice@example.com")
	if err != nil || got.ID != a.ID {
		t.Errorf("GetByEmail = %v, %v", got, err)
	}
	if _, err := db.Accounts.Get(ctx, "user-missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get missing = %v", err)
	}
}

func TestAccounts_DuplicateUsernameOrEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := db.Accounts.Create(ctx, &models.Account{Username: "bob", Email: "bob@example.com"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		acct models.Account
	}{
		{"username differs in case", models.Account{Username: "BOB", Email: "other@example.com"}},
		{"email differs in case", models.Account{Username: "robert", Email: "Bob@Example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := tt.acct
			if err := db.Accounts.Create(ctx, &acct); !errors.Is(err, models.ErrConflict) {
				t.Errorf("Create = %v, want ErrConflict", err)
			}
		})
	}
	if n, _ := db.Accounts.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestAccounts_ConcurrentDuplicateRegistration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const workers = 12
	var wg sync.WaitGroup
	var ok, conflicts atomic.Int32
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := db.Accounts.Create(ctx, &models.Account{
				Username: "carol",
				Email:    fmt.Sprintf("carol%d@example.com", i),
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, models.ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if ok.Load() != 1 || conflicts.Load() != workers-1 {
		t.Errorf("ok=%d conflicts=%d, want 1 and %d", ok.Load(), conflicts.Load(), workers-1)
	}
}

func TestAccounts_UpdateMovesUniqueAndRole(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := &models.Account{Username: "dave", Email: "dave@example.com", Role: models.RoleUser}
	if err := db.Accounts.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	if has, _ := db.Accounts.HasAdmin(ctx); has {
		t.Fatal("HasAdmin before promotion")
	}

	updated, err := db.Accounts.Update(ctx, a.ID, func(x *models.Account) error {
		x.Email = "DAVID@example.com"
		x.Role = models.RoleAdmin
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.UpdatedAt.After(a.UpdatedAt) {
		t.Error("UpdatedAt not bumped")
	}
	if has, _ := db.Accounts.HasAdmin(ctx); !has {
		t.Error("HasAdmin after promotion = false")
	}
	if _, err := db.Accounts.GetByEmail(ctx, "dave@example.com"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("old email still resolves: %v", err)
	}
	if got, err := db.Accounts.GetByEmail(ctx, "david@example.com"); err != nil || got.ID != a.ID {
		t.Errorf("new email = %v, %v", got, err)
	}
}

func TestLinks_ListByCreatorNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		l := &models.Link{QuestionnaireType: "mbti", CreatedBy: "user-1", Source: models.SourceQuota}
		if err := db.Links.Create(ctx, l); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, l.ID)
	}
	if err := db.Links.Create(ctx, &models.Link{QuestionnaireType: "mbti", CreatedBy: "user-2"}); err != nil {
		t.Fatal(err)
	}

	list, err := db.Links.ListByCreator(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("ListByCreator = %d links", len(list))
	}
	for i, l := range list {
		if l.ID != ids[len(ids)-1-i] {
			t.Errorf("position %d = %s, want %s", i, l.ID, ids[len(ids)-1-i])
		}
		if l.Status != models.LinkUnused {
			t.Errorf("default status = %q", l.Status)
		}
	}
	all, _ := db.Links.List(ctx)
	if len(all) != 4 {
		t.Errorf("List = %d links", len(all))
	}
}

func TestLinks_OneLinkPerOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	first := &models.Link{QuestionnaireType: "mbti", Source: models.SourcePayment, OrderID: "order-1"}
	if err := db.Links.Create(ctx, first); err != nil {
		t.Fatal(err)
	}
	err := db.Links.Create(ctx, &models.Link{QuestionnaireType: "mbti", Source: models.SourcePayment, OrderID: "order-1"})
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("second link for order = %v, want ErrConflict", err)
	}
	err = db.View(ctx, func(tx *store.Tx) error {
		l, err := db.Links.GetByOrderTx(tx, "order-1")
		if err == nil && l.ID != first.ID {
			t.Errorf("GetByOrderTx = %s", l.ID)
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}

func sampleQuestionnaire(qType string) *models.Questionnaire {
	return &models.Questionnaire{
		Type:  qType,
		Title: "Personality " + qType,
		Questions: []models.Question{
			{ID: "q1", Number: 1, Text: "I enjoy parties", Options: []models.QuestionOption{{Value: 1, Label: "Yes"}, {Value: 0, Label: "No"}}},
		},
	}
}

func TestQuestionnaires_CreateSaveRename(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Questionnaires.Create(ctx, sampleQuestionnaire("mbti")); err != nil {
		t.Fatal(err)
	}
	if err := db.Questionnaires.Create(ctx, sampleQuestionnaire("mbti")); !errors.Is(err, models.ErrConflict) {
		t.Errorf("duplicate Create = %v, want ErrConflict", err)
	}

	published, err := db.Questionnaires.SetPublished(ctx, "mbti", true)
	if err != nil {
		t.Fatal(err)
	}

	replacement := sampleQuestionnaire("mbti")
	replacement.Title = "MBTI v2"
	saved, err := db.Questionnaires.Save(ctx, replacement)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Title != "MBTI v2" || !saved.IsPublished || !saved.CreatedAt.Equal(published.CreatedAt) {
		t.Errorf("Save = %+v", saved)
	}

	if err := db.Questionnaires.Create(ctx, sampleQuestionnaire("disc")); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Questionnaires.Rename(ctx, "mbti", "disc"); !errors.Is(err, models.ErrConflict) {
		t.Errorf("Rename onto existing = %v, want ErrConflict", err)
	}
	if _, err := db.Questionnaires.Get(ctx, "mbti"); err != nil {
		t.Errorf("failed rename removed the original: %v", err)
	}

	renamed, err := db.Questionnaires.Rename(ctx, "mbti", "mbti-2")
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Title != "MBTI v2" || !renamed.IsPublished {
		t.Errorf("renamed = %+v", renamed)
	}
	if _, err := db.Questionnaires.Get(ctx, "mbti"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("old type still present: %v", err)
	}

	pub, err := db.Questionnaires.ListPublished(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pub) != 1 || pub[0].Type != "mbti-2" {
		t.Errorf("ListPublished = %v", pub)
	}
}

func TestNotifications_MarkAllRead(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		n := &models.Notification{UserID: "user-1", Type: models.NotificationCompleted, Title: "done"}
		if err := db.Notifications.Create(ctx, n); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Notifications.Create(ctx, &models.Notification{UserID: "user-2", Title: "other"}); err != nil {
		t.Fatal(err)
	}

	n, err := db.Notifications.MarkAllRead(ctx, "user-1")
	if err != nil || n != 3 {
		t.Fatalf("MarkAllRead = %d, %v", n, err)
	}
	n, _ = db.Notifications.MarkAllRead(ctx, "user-1")
	if n != 0 {
		t.Errorf("second MarkAllRead = %d", n)
	}
	others, _ := db.Notifications.ListByUser(ctx, "user-2")
	if len(others) != 1 || others[0].Read {
		t.Errorf("other user's notifications touched: %+v", others)
	}
}

func TestOrders_BusinessReference(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	o := &models.Order{OutTradeNo: "T1", Name: "MBTI", Money: "9.90", QuestionnaireType: "mbti", UserID: "user-1"}
	if err := db.Orders.Create(ctx, o); err != nil {
		t.Fatal(err)
	}
	if o.Status != models.OrderPending {
		t.Errorf("default status = %q", o.Status)
	}
	if err := db.Orders.Create(ctx, &models.Order{OutTradeNo: "T1"}); !errors.Is(err, models.ErrConflict) {
		t.Errorf("duplicate out_trade_no = %v", err)
	}
	if err := db.Orders.Create(ctx, &models.Order{}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("missing out_trade_no = %v", err)
	}

	if _, err := db.Orders.ChangeBusinessReference(ctx, o.ID, "T2"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Orders.GetByBusinessReference(ctx, "T1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("old reference resolves: %v", err)
	}
	got, err := db.Orders.GetByBusinessReference(ctx, "T2")
	if err != nil || got.ID != o.ID {
		t.Errorf("new reference = %v, %v", got, err)
	}

	mine, _ := db.Orders.ListByUser(ctx, "user-1")
	if len(mine) != 1 {
		t.Errorf("ListByUser = %d", len(mine))
	}

	reports, err := db.VerifyIndexes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reports["orders"].Clean() {
		t.Errorf("orders drift after rename: %+v", reports["orders"])
	}
}

func TestMaintenance_VerifyAndRepair(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	l := &models.Link{QuestionnaireType: "mbti", CreatedBy: "user-1"}
	if err := db.Links.Create(ctx, l); err != nil {
		t.Fatal(err)
	}

	reports, err := db.VerifyIndexes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for ns, r := range reports {
		if !r.Clean() {
			t.Errorf("%s not clean before drift: %+v", ns, r)
		}
	}
	if len(reports) != 5 {
		t.Errorf("reports for %d collections", len(reports))
	}

	// Drop the creator entry and add one for a link that never existed.
	err = db.Backend().Update(ctx, func(txn kv.Txn) error {
		if err := txn.Delete([]byte("own:links:creator:user-1:" + l.ID)); err != nil {
			return err
		}
		return txn.Set([]byte("own:links:creator:user-1:link-0-deadbeef"), nil)
	})
	if err != nil {
		t.Fatal(err)
	}

	reports, err = db.VerifyIndexes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := reports["links"].Drift(); got != 2 {
		t.Errorf("links drift = %d, want 2 (%+v)", got, reports["links"])
	}

	if _, err := db.RepairIndexes(ctx); err != nil {
		t.Fatal(err)
	}
	reports, _ = db.VerifyIndexes(ctx)
	if !reports["links"].Clean() {
		t.Errorf("links after repair: %+v", reports["links"])
	}
	list, _ := db.Links.ListByCreator(ctx, "user-1")
	if len(list) != 1 || list[0].ID != l.ID {
		t.Errorf("ListByCreator after repair = %v", list)
	}
}

func TestDB_ClosedBackendIsUnavailable(t *testing.T) {
	db := NewMemory()
	_ = db.Close()
	if err := db.Ping(context.Background()); !errors.Is(err, models.ErrBackendUnavailable) {
		t.Errorf("Ping on closed backend = %v", err)
	}
}

func TestAccounts_ConcurrentFirstAdminOnBadger(t *testing.T) {
	backend, err := kv.OpenBadger(kv.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	db := New(backend, store.RetryPolicy{MaxRetries: 20, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond})
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	// Both first attempts decide before either commits.
	var decided sync.WaitGroup
	decided.Add(2)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			first := true
			errs[i] = db.Update(ctx, func(tx *store.Tx) error {
				hasAdmin, err := db.Accounts.HasAdminTx(tx)
				if err != nil {
					return err
				}
				if first {
					first = false
					decided.Done()
					decided.Wait()
				}
				a := &models.Account{
					Username: fmt.Sprintf("founder%d", i),
					Email:    fmt.Sprintf("founder%d@example.org", i),
					Role:     models.RoleUser,
				}
				if !hasAdmin {
					a.Role = models.RoleAdmin
				}
				return db.Accounts.CreateTx(tx, a)
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("registration %d: %v", i, err)
		}
	}

	all, err := db.Accounts.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	admins := 0
	for _, a := range all {
		if a.Role == models.RoleAdmin {
			admins++
		}
	}
	if len(all) != 2 || admins != 1 {
		t.Errorf("accounts=%d admins=%d, want 2 accounts and 1 admin", len(all), admins)
	}
}
