// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/events"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/quota"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, payload)
	return nil
}

func (p *recordingPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}
	return n
}

type fixture struct {
	svc   *Service
	db    *database.DB
	clock *fakeClock
	pub   *recordingPublisher
	user  models.Principal
	other models.Principal
	admin models.Principal
}

func newFixture(t *testing.T, remaining int) *fixture {
	t.Helper()
	ctx := context.Background()
	db := database.NewMemory()
	clock := &fakeClock{t: base}
	db.SetClock(clock.Now)
	t.Cleanup(func() { _ = db.Close() })

	mk := func(username string, role models.Role, remaining int) models.Principal {
		a := &models.Account{
			Username:       username,
			Email:          username + "@example.org",
			Role:           role,
			Status:         models.AccountActive,
			RemainingQuota: remaining,
			TotalQuota:     remaining,
		}
		if err := db.Accounts.Create(ctx, a); err != nil {
			t.Fatalf("create account: %v", err)
		}
		return models.Principal{UserID: a.ID, Username: a.Username, Role: role}
	}

	if err := db.Questionnaires.Create(ctx, &models.Questionnaire{
		Type:        "mbti",
		Title:       "MBTI",
		Questions:   []models.Question{{ID: "q1", Number: 1, Text: "?"}},
		IsPublished: true,
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.Questionnaires.Create(ctx, &models.Questionnaire{
		Type:      "draft",
		Title:     "Draft",
		Questions: []models.Question{{ID: "q1", Number: 1, Text: "?"}},
	}); err != nil {
		t.Fatal(err)
	}

	pub := &recordingPublisher{}
	f := &fixture{
		db:    db,
		clock: clock,
		pub:   pub,
		user:  mk("alice", models.RoleUser, remaining),
		other: mk("bob", models.RoleUser, 10),
		admin: mk("root", models.RoleAdmin, 0),
	}
	f.svc = NewService(db, quota.NewLedger(db, 2), pub, Options{
		PublicBaseURL: "https://assess.example.org/",
		Location:      time.UTC,
	})
	return f
}

func (f *fixture) issue(t *testing.T, p models.Principal, n int) []*models.Link {
	t.Helper()
	res, err := f.svc.Issue(context.Background(), p, IssueRequest{QuestionnaireType: "mbti", Quantity: n})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return res.Links
}

func remaining(t *testing.T, db *database.DB, id string) int {
	t.Helper()
	a, err := db.Accounts.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return a.RemainingQuota
}

func TestIssue_ChargesQuotaAtomically(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	links := f.issue(t, f.user, 3)
	if len(links) != 3 {
		t.Fatalf("issued %d links, want 3", len(links))
	}
	for _, l := range links {
		if l.Status != models.LinkUnused || l.Source != models.SourceQuota || l.CreatedBy != f.user.UserID {
			t.Errorf("link = %+v", l)
		}
		if l.URL != "https://assess.example.org/test/"+l.ID {
			t.Errorf("url = %q", l.URL)
		}
	}
	if got := remaining(t, f.db, f.user.UserID); got != 2 {
		t.Errorf("remaining = %d, want 2", got)
	}

	_, err := f.svc.Issue(ctx, f.user, IssueRequest{QuestionnaireType: "mbti", Quantity: 3})
	if !errors.Is(err, models.ErrQuotaExceeded) {
		t.Fatalf("second issue err = %v, want ErrQuotaExceeded", err)
	}
	if got := remaining(t, f.db, f.user.UserID); got != 2 {
		t.Errorf("remaining after rejection = %d, want 2", got)
	}
	all, _ := f.db.Links.ListByCreator(ctx, f.user.UserID)
	if len(all) != 3 {
		t.Errorf("links after rejection = %d, want 3", len(all))
	}
	if f.pub.count(events.TopicQuotaLow) != 1 {
		t.Errorf("quota.low events = %d, want 1", f.pub.count(events.TopicQuotaLow))
	}
}

func TestIssue_Rejections(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	past := base.Add(-time.Hour)

	tests := []struct {
		name string
		p    models.Principal
		req  IssueRequest
		want error
	}{
		{"unpublished", f.user, IssueRequest{QuestionnaireType: "draft", Quantity: 1}, models.ErrInvalidInput},
		{"unknown questionnaire", f.user, IssueRequest{QuestionnaireType: "nope", Quantity: 1}, models.ErrNotFound},
		{"too many", f.user, IssueRequest{QuestionnaireType: "mbti", Quantity: 101}, models.ErrInvalidInput},
		{"negative", f.user, IssueRequest{QuestionnaireType: "mbti", Quantity: -1}, models.ErrInvalidInput},
		{"expiry in the past", f.user, IssueRequest{QuestionnaireType: "mbti", ExpiresAt: &past}, models.ErrInvalidInput},
		{"missing type", f.user, IssueRequest{Quantity: 1}, models.ErrInvalidInput},
		{"prefix with separator", f.user, IssueRequest{QuestionnaireType: "mbti", CustomPrefix: "a:b"}, models.ErrInvalidInput},
		{"prefix too long", f.user, IssueRequest{QuestionnaireType: "mbti", CustomPrefix: strings.Repeat("x", 17)}, models.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Issue(ctx, tt.p, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if got := remaining(t, f.db, f.user.UserID); got != 5 {
		t.Errorf("remaining = %d, want 5", got)
	}
}

func TestIssue_CustomPrefix(t *testing.T) {
	f := newFixture(t, 5)
	res, err := f.svc.Issue(context.Background(), f.user, IssueRequest{QuestionnaireType: "mbti", Quantity: 2, CustomPrefix: " Spring-Camp "})
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range res.Links {
		if !strings.HasPrefix(l.ID, "spring-camp-") {
			t.Errorf("id = %q, want spring-camp- prefix", l.ID)
		}
		if l.URL != "https://assess.example.org/test/"+l.ID {
			t.Errorf("url = %q", l.URL)
		}
		if _, err := f.svc.Resolve(context.Background(), l.ID); err != nil {
			t.Errorf("Resolve(%s): %v", l.ID, err)
		}
	}
}

func TestIssue_InactiveAccount(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	if _, err := f.db.Accounts.Update(ctx, f.user.UserID, func(a *models.Account) error {
		a.Status = models.AccountDisabled
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.Issue(ctx, f.user, IssueRequest{QuestionnaireType: "mbti", Quantity: 1})
	if !errors.Is(err, models.ErrAccountInactive) {
		t.Fatalf("err = %v, want ErrAccountInactive", err)
	}
}

func TestIssue_AdminIsUnlimited(t *testing.T) {
	f := newFixture(t, 0)
	f.issue(t, f.admin, 20)
	a, err := f.db.Accounts.Get(context.Background(), f.admin.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if a.RemainingQuota != 0 || a.UsedQuota != 20 {
		t.Errorf("admin quota = %d remaining / %d used", a.RemainingQuota, a.UsedQuota)
	}
	if f.pub.count(events.TopicQuotaLow) != 0 {
		t.Error("admins must not get quota warnings")
	}
}

func TestRedeem_Once(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	l := f.issue(t, f.user, 1)[0]

	got, err := f.svc.Redeem(ctx, l.ID, "report-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.LinkUsed || got.UsedAt == nil || got.ReportID != "report-1" {
		t.Fatalf("redeemed link = %+v", got)
	}
	firstUsed := *got.UsedAt

	f.clock.Advance(time.Minute)
	if _, err := f.svc.Redeem(ctx, l.ID, "report-2"); !errors.Is(err, models.ErrAlreadyFinalized) {
		t.Fatalf("second redeem err = %v, want ErrAlreadyFinalized", err)
	}
	stored, _ := f.db.Links.Get(ctx, l.ID)
	if !stored.UsedAt.Equal(firstUsed) || stored.ReportID != "report-1" {
		t.Errorf("redemption data changed: %+v", stored)
	}
	if f.pub.count(events.TopicLinkRedeemed) != 1 {
		t.Errorf("link.redeemed events = %d, want 1", f.pub.count(events.TopicLinkRedeemed))
	}
}

func TestRedeem_ConcurrentExactlyOne(t *testing.T) {
	f := newFixture(t, 5)
	l := f.issue(t, f.user, 1)[0]

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, finalized := 0, 0
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Redeem(context.Background(), l.ID, "report")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, models.ErrAlreadyFinalized):
				finalized++
			default:
				t.Errorf("worker %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	if ok != 1 || finalized != workers-1 {
		t.Errorf("ok=%d finalized=%d, want 1/%d", ok, finalized, workers-1)
	}
}

func TestRedeem_Rejections(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	links := f.issue(t, f.user, 2)

	if _, err := f.svc.SetStatus(ctx, f.user, links[0].ID, models.LinkDisabled); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Redeem(ctx, links[0].ID, "r"); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("disabled redeem err = %v", err)
	}
	if _, err := f.svc.Redeem(ctx, "link-missing", "r"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing redeem err = %v", err)
	}
	if _, err := f.svc.Redeem(ctx, links[1].ID, "  "); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("blank report err = %v", err)
	}
}

func TestRedeem_DueLinkExpiresInPlace(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	deadline := base.Add(time.Hour)
	res, err := f.svc.Issue(ctx, f.user, IssueRequest{QuestionnaireType: "mbti", Quantity: 1, ExpiresAt: &deadline})
	if err != nil {
		t.Fatal(err)
	}
	id := res.Links[0].ID

	f.clock.Advance(2 * time.Hour)
	if _, err := f.svc.Resolve(ctx, id); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("resolve err = %v", err)
	}
	if _, err := f.svc.Redeem(ctx, id, "r"); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("redeem err = %v, want ErrInvalidTransition", err)
	}
	stored, _ := f.db.Links.Get(ctx, id)
	if stored.Status != models.LinkExpired || stored.UsedAt != nil {
		t.Errorf("stored = %+v, want expired and unredeemed", stored)
	}
}

func TestSetStatus_Transitions(t *testing.T) {
	f := newFixture(t, 20)
	ctx := context.Background()

	fresh := func() *models.Link { return f.issue(t, f.user, 1)[0] }
	redeemed := func() *models.Link {
		l := fresh()
		if _, err := f.svc.Redeem(ctx, l.ID, "r"); err != nil {
			t.Fatal(err)
		}
		return l
	}

	t.Run("disable and re-enable unredeemed", func(t *testing.T) {
		l := fresh()
		if _, err := f.svc.SetStatus(ctx, f.user, l.ID, models.LinkDisabled); err != nil {
			t.Fatal(err)
		}
		got, err := f.svc.SetStatus(ctx, f.user, l.ID, models.LinkUnused)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != models.LinkUnused {
			t.Errorf("status = %s, want unused", got.Status)
		}
	})

	t.Run("re-enable redeemed lands on used", func(t *testing.T) {
		l := redeemed()
		if _, err := f.svc.SetStatus(ctx, f.user, l.ID, models.LinkDisabled); err != nil {
			t.Fatal(err)
		}
		got, err := f.svc.SetStatus(ctx, f.user, l.ID, models.LinkUnused)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != models.LinkUsed || got.ReportID != "r" {
			t.Errorf("link = %+v, want used with report kept", got)
		}
	})

	t.Run("unused to used is redemption only", func(t *testing.T) {
		l := fresh()
		if _, err := f.svc.SetStatus(ctx, f.user, l.ID, models.LinkUsed); !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("expire and re-enable are admin only", func(t *testing.T) {
		l := fresh()
		if _, err := f.svc.SetStatus(ctx, f.user, l.ID, models.LinkExpired); !errors.Is(err, models.ErrForbidden) {
			t.Errorf("user expire err = %v", err)
		}
		if _, err := f.svc.SetStatus(ctx, f.admin, l.ID, models.LinkExpired); err != nil {
			t.Fatal(err)
		}
		if _, err := f.svc.SetStatus(ctx, f.user, l.ID, models.LinkUnused); !errors.Is(err, models.ErrForbidden) {
			t.Errorf("user re-enable err = %v", err)
		}
		if _, err := f.svc.SetStatus(ctx, f.admin, l.ID, models.LinkUnused); err != nil {
			t.Errorf("admin re-enable: %v", err)
		}
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		l := fresh()
		if _, err := f.svc.SetStatus(ctx, f.other, l.ID, models.LinkDisabled); !errors.Is(err, models.ErrForbidden) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		l := fresh()
		if _, err := f.svc.SetStatus(ctx, f.user, l.ID, "bogus"); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestForceStatus_KeepsRedemption(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	l := f.issue(t, f.user, 1)[0]
	if _, err := f.svc.Redeem(ctx, l.ID, "r"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.ForceStatus(ctx, f.user, l.ID, models.LinkUnused); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("user force err = %v", err)
	}
	got, err := f.svc.ForceStatus(ctx, f.admin, l.ID, models.LinkUnused)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.LinkUnused || got.UsedAt == nil {
		t.Fatalf("forced link = %+v", got)
	}
	if _, err := f.svc.Redeem(ctx, l.ID, "again"); !errors.Is(err, models.ErrAlreadyFinalized) {
		t.Errorf("redeem after force err = %v, want ErrAlreadyFinalized", err)
	}
}

func TestBatchOperations(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	mine := f.issue(t, f.user, 2)
	theirs := f.issue(t, f.other, 1)[0]
	ids := []string{mine[0].ID, theirs.ID, mine[1].ID, "link-missing"}

	res, err := f.svc.BatchSetStatus(ctx, f.user, ids, models.LinkDisabled)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Succeeded) != 2 || len(res.Failed) != 2 {
		t.Errorf("batch status = %+v", res)
	}
	stored, _ := f.db.Links.Get(ctx, theirs.ID)
	if stored.Status != models.LinkUnused {
		t.Error("another user's link was changed")
	}

	res, err = f.svc.BatchDelete(ctx, f.user, ids)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Succeeded) != 2 || len(res.Failed) != 2 {
		t.Errorf("batch delete = %+v", res)
	}
	if _, err := f.svc.BatchDelete(ctx, f.user, nil); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("empty batch err = %v", err)
	}
}

func TestListAndGet(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	for range 3 {
		f.issue(t, f.user, 1)
		f.clock.Advance(time.Second)
	}
	f.issue(t, f.other, 1)

	page, err := f.svc.List(ctx, f.user, Filter{PageSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Items) != 2 {
		t.Fatalf("page = total %d items %d", page.Total, len(page.Items))
	}
	if !page.Items[0].CreatedAt.After(page.Items[1].CreatedAt) {
		t.Error("links not newest first")
	}

	if _, err := f.svc.Get(ctx, f.other, page.Items[0].ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("other Get err = %v", err)
	}
	if _, err := f.svc.Get(ctx, f.admin, page.Items[0].ID); err != nil {
		t.Errorf("admin Get: %v", err)
	}

	adminView, err := f.svc.List(ctx, f.admin, Filter{Owner: f.user.UserID, Status: models.LinkUnused})
	if err != nil {
		t.Fatal(err)
	}
	if adminView.Total != 3 {
		t.Errorf("admin view total = %d", adminView.Total)
	}
}

func TestStatsAndDashboard(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	links := f.issue(t, f.user, 3)
	if _, err := f.svc.Redeem(ctx, links[0].ID, "r"); err != nil {
		t.Fatal(err)
	}

	st, err := f.svc.Stats(ctx, f.user, links[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if *st != (LinkStats{TotalViews: 1, TotalCompletions: 1, CompletionRate: 100}) {
		t.Errorf("stats = %+v", st)
	}

	d, err := f.svc.Dashboard(ctx, f.user)
	if err != nil {
		t.Fatal(err)
	}
	if d.TotalLinks != 3 || d.UnusedLinks != 2 || d.TodayUsedLinks != 1 || d.RemainingQuota != 7 {
		t.Errorf("dashboard = %+v", d)
	}
	if d.ParticipationRate != 33 {
		t.Errorf("participation = %d, want 33", d.ParticipationRate)
	}
	if len(d.QuestionnaireSummary) != 2 {
		t.Fatalf("summary = %+v", d.QuestionnaireSummary)
	}
	for _, u := range d.QuestionnaireSummary {
		if u.Type == "mbti" && (u.TotalLinks != 3 || u.UsedLinks != 1 || u.CompletionRate != 33) {
			t.Errorf("mbti usage = %+v", u)
		}
	}

	rt, err := f.svc.Realtime(ctx, f.user)
	if err != nil {
		t.Fatal(err)
	}
	if rt.RemainingQuota != 7 || rt.TodayUsedLinks != 1 {
		t.Errorf("realtime = %+v", rt)
	}
}

func TestChart(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.issue(t, f.user, 2)
	f.clock.Advance(24 * time.Hour)
	f.issue(t, f.user, 1)

	c, err := f.svc.Chart(ctx, f.user, "")
	if err != nil {
		t.Fatal(err)
	}
	if c.Period != "7d" || len(c.Data) != 7 {
		t.Fatalf("chart = %+v", c)
	}
	last, prev := c.Data[6], c.Data[5]
	if last.Date != "2026-03-02" || last.Links != 1 || prev.Links != 2 {
		t.Errorf("last two days = %+v %+v", prev, last)
	}
	if _, err := f.svc.Chart(ctx, f.user, "90d"); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("bad period err = %v", err)
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	l := f.issue(t, f.user, 1)[0]

	sess, err := f.svc.Resolve(ctx, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Questionnaire == nil || sess.Questionnaire.Type != "mbti" {
		t.Errorf("session = %+v", sess)
	}
	if _, err := f.svc.Redeem(ctx, l.ID, "r"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Resolve(ctx, l.ID); !errors.Is(err, models.ErrAlreadyFinalized) {
		t.Errorf("resolve used err = %v", err)
	}
}

func TestExpireDue(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	soon := base.Add(time.Hour)
	later := base.Add(48 * time.Hour)

	due, err := f.svc.Issue(ctx, f.user, IssueRequest{QuestionnaireType: "mbti", Quantity: 2, ExpiresAt: &soon})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Issue(ctx, f.user, IssueRequest{QuestionnaireType: "mbti", Quantity: 1, ExpiresAt: &later}); err != nil {
		t.Fatal(err)
	}
	f.issue(t, f.user, 1)
	if _, err := f.svc.Redeem(ctx, due.Links[0].ID, "r"); err != nil {
		t.Fatal(err)
	}

	n, err := f.svc.ExpireDue(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expired %d, want 1", n)
	}
	got, _ := f.db.Links.Get(ctx, due.Links[1].ID)
	if got.Status != models.LinkExpired {
		t.Errorf("due link status = %s", got.Status)
	}
	used, _ := f.db.Links.Get(ctx, due.Links[0].ID)
	if used.Status != models.LinkUsed {
		t.Errorf("redeemed link status = %s", used.Status)
	}

	if n, _ := f.svc.ExpireDue(ctx, base.Add(2*time.Hour)); n != 0 {
		t.Errorf("second sweep expired %d", n)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct{ part, whole, want int }{
		{0, 0, 0}, {1, 3, 33}, {2, 3, 67}, {1, 8, 13}, {5, 5, 100},
	}
	for _, tt := range tests {
		if got := percent(tt.part, tt.whole); got != tt.want {
			t.Errorf("percent(%d, %d) = %d, want %d", tt.part, tt.whole, got, tt.want)
		}
	}
}
