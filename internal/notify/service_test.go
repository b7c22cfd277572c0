// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/events"
	"github.com/tomtom215/assesslink/internal/models"
)

var (
	alice = models.Principal{UserID: "user-alice", Role: models.RoleUser}
	bob   = models.Principal{UserID: "user-bob", Role: models.RoleUser}
)

func newTestService(t *testing.T) (*Service, *database.DB) {
	t.Helper()
	db := database.NewMemory()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	db.SetClock(func() time.Time {
		return base.Add(time.Duration(tick.Add(1)) * time.Second)
	})
	t.Cleanup(func() { _ = db.Close() })
	return NewService(db), db
}

func seed(t *testing.T, s *Service, p models.Principal, typ models.NotificationType, read bool) *models.Notification {
	t.Helper()
	n := &models.Notification{UserID: p.UserID, Type: typ, Title: "t", Read: read}
	if err := s.Create(context.Background(), n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return n
}

func TestService_CreateRequiresRecipient(t *testing.T) {
	s, _ := newTestService(t)
	err := s.Create(context.Background(), &models.Notification{Type: models.NotificationPromotion})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

type recordingPusher struct {
	users []string
	types []string
}

func (p *recordingPusher) SendToUser(userID, msgType string, _ any) bool {
	p.users = append(p.users, userID)
	p.types = append(p.types, msgType)
	return true
}

func TestService_CreatePushesToLiveConnections(t *testing.T) {
	s, _ := newTestService(t)
	pusher := &recordingPusher{}
	s.SetPusher(pusher)

	seed(t, s, alice, models.NotificationCompleted, false)
	_ = s.Create(context.Background(), &models.Notification{Type: models.NotificationPromotion})

	if len(pusher.users) != 1 || pusher.users[0] != alice.UserID {
		t.Fatalf("pushed to %v, want only %s", pusher.users, alice.UserID)
	}
	if pusher.types[0] != "notification" {
		t.Errorf("message type = %q", pusher.types[0])
	}
}

func TestService_ListFiltersAndCounts(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	seed(t, s, alice, models.NotificationCompleted, false)
	seed(t, s, alice, models.NotificationCompleted, true)
	seed(t, s, alice, models.NotificationQuotaWarning, false)
	seed(t, s, bob, models.NotificationCompleted, false)

	unread := false
	tests := []struct {
		name       string
		filter     Filter
		wantTotal  int
		wantUnread int
	}{
		{"all", Filter{}, 3, 2},
		{"by type", Filter{Type: models.NotificationCompleted}, 2, 1},
		{"unread only", Filter{Read: &unread}, 2, 2},
		{"page size", Filter{PageSize: 1}, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, alice, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if got.Total != tt.wantTotal || got.UnreadCount != tt.wantUnread {
				t.Errorf("total=%d unread=%d, want %d/%d", got.Total, got.UnreadCount, tt.wantTotal, tt.wantUnread)
			}
			if tt.filter.PageSize == 1 && len(got.Items) != 1 {
				t.Errorf("items = %d, want 1", len(got.Items))
			}
		})
	}

	list, _ := s.List(ctx, alice, Filter{})
	if list.Items[0].Type != models.NotificationQuotaWarning {
		t.Errorf("first item = %s, want newest first", list.Items[0].Type)
	}
}

func TestService_MarkReadOwnership(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	n := seed(t, s, alice, models.NotificationCompleted, false)

	if _, err := s.MarkRead(ctx, bob, n.ID); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("bob MarkRead err = %v, want ErrForbidden", err)
	}
	if _, err := s.MarkRead(ctx, alice, "notification-missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("missing err = %v, want ErrNotFound", err)
	}
	got, err := s.MarkRead(ctx, alice, n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Read {
		t.Error("notification not marked read")
	}
	if c, _ := s.UnreadCount(ctx, alice); c != 0 {
		t.Errorf("unread = %d, want 0", c)
	}
}

func TestService_MarkManyAndAll(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	a1 := seed(t, s, alice, models.NotificationCompleted, false)
	a2 := seed(t, s, alice, models.NotificationCompleted, true)
	seed(t, s, alice, models.NotificationPromotion, false)
	b1 := seed(t, s, bob, models.NotificationCompleted, false)

	marked, err := s.MarkManyRead(ctx, alice, []string{a1.ID, a2.ID, b1.ID, "notification-missing"})
	if err != nil {
		t.Fatal(err)
	}
	if marked != 1 {
		t.Errorf("MarkManyRead = %d, want 1", marked)
	}
	if c, _ := s.UnreadCount(ctx, bob); c != 1 {
		t.Errorf("bob unread = %d, want 1", c)
	}

	marked, err = s.MarkAllRead(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if marked != 1 {
		t.Errorf("MarkAllRead = %d, want 1", marked)
	}
	if c, _ := s.UnreadCount(ctx, alice); c != 0 {
		t.Errorf("alice unread = %d, want 0", c)
	}
}

func TestService_DeleteAndBatchDelete(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	a1 := seed(t, s, alice, models.NotificationCompleted, false)
	a2 := seed(t, s, alice, models.NotificationCompleted, false)
	a3 := seed(t, s, alice, models.NotificationCompleted, false)
	b1 := seed(t, s, bob, models.NotificationCompleted, false)

	if err := s.Delete(ctx, bob, a1.ID); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("bob Delete err = %v, want ErrForbidden", err)
	}
	if err := s.Delete(ctx, alice, a1.ID); err != nil {
		t.Fatal(err)
	}
	n, err := s.BatchDelete(ctx, alice, []string{a1.ID, a2.ID, a3.ID, b1.ID})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("BatchDelete = %d, want 2", n)
	}
	if _, err := db.Notifications.Get(ctx, b1.ID); err != nil {
		t.Errorf("bob's notification was deleted: %v", err)
	}
}

func TestSubscribers_CreateNotifications(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if err := s.OnOrderPaid(ctx, events.OrderPaid{
		OrderID: "order-1", OutTradeNo: "AL1", UserID: alice.UserID, LinkID: "link-1", QuestionnaireType: "mbti", Money: "9.90",
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.OnOrderPaid(ctx, events.OrderPaid{OrderID: "order-2"}); err != nil {
		t.Fatalf("anonymous order: %v", err)
	}
	if err := s.OnLinkRedeemed(ctx, events.LinkRedeemed{
		LinkID: "link-1", OwnerID: alice.UserID, ReportID: "r-1", QuestionnaireType: "mbti",
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.OnQuotaLow(ctx, events.QuotaLow{AccountID: alice.UserID, Remaining: 2, Threshold: 5}); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(ctx, alice, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	types := map[models.NotificationType]*models.Notification{}
	for _, n := range list.Items {
		types[n.Type] = n
	}
	if len(types) != 3 {
		t.Fatalf("types = %v, want 3 kinds", types)
	}
	if n := types[models.NotificationPaymentSuccess]; n.LinkID != "link-1" || n.Metadata["outTradeNo"] != "AL1" {
		t.Errorf("payment notification = %+v", n)
	}
	if n := types[models.NotificationCompleted]; n.ReportID != "r-1" {
		t.Errorf("completed notification = %+v", n)
	}
	if n := types[models.NotificationQuotaWarning]; n.Metadata["remaining"] != "2" {
		t.Errorf("quota notification = %+v", n)
	}
}

func TestRegister_DeliversThroughBus(t *testing.T) {
	s, _ := newTestService(t)
	bus, err := events.NewBus(events.Config{Buffer: 8, Retries: 1, RetryInterval: time.Millisecond, CloseTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	s.Register(bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bus.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
		<-done
	})
	select {
	case <-bus.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	if err := bus.Publish(context.Background(), events.TopicQuotaLow, events.QuotaLow{AccountID: alice.UserID, Remaining: 1}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c, _ := s.UnreadCount(context.Background(), alice); c == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("quota warning notification not created")
}
