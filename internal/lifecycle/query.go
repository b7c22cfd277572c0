// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

// Filter narrows a link listing.
type Filter struct {
	Status            models.LinkStatus
	QuestionnaireType string
	// Owner lets an admin list another account's links. Ignored for users.
	Owner    string
	Page     int
	PageSize int
}

// Get returns a link the principal owns, or any link for an admin.
func (s *Service) Get(ctx context.Context, p models.Principal, id string) (*models.Link, error) {
	l, err := s.db.Links.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(p, l); err != nil {
		return nil, err
	}
	return l, nil
}

// List returns the principal's links matching f, newest first.
func (s *Service) List(ctx context.Context, p models.Principal, f Filter) (models.Page[*models.Link], error) {
	owner := p.UserID
	if p.IsAdmin() && f.Owner != "" {
		owner = f.Owner
	}
	all, err := s.db.Links.ListByCreator(ctx, owner)
	if err != nil {
		return models.Page[*models.Link]{}, err
	}
	out := make([]*models.Link, 0, len(all))
	for _, l := range all {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.QuestionnaireType != "" && l.QuestionnaireType != f.QuestionnaireType {
			continue
		}
		out = append(out, l)
	}
	return models.Paginate(out, f.Page, f.PageSize), nil
}

// LinkStats is the per-link usage summary.
type LinkStats struct {
	TotalViews       int `json:"totalViews"`
	TotalCompletions int `json:"totalCompletions"`
	CompletionRate   int `json:"completionRate"`
}

// Stats returns usage of a single link.
func (s *Service) Stats(ctx context.Context, p models.Principal, id string) (*LinkStats, error) {
	l, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	st := &LinkStats{}
	if l.UsedAt != nil {
		st.TotalViews = 1
	}
	if l.Status == models.LinkUsed {
		st.TotalCompletions = 1
		st.CompletionRate = 100
	}
	return st, nil
}

// QuestionnaireUsage is one row of the dashboard's per-type summary.
type QuestionnaireUsage struct {
	Type           string `json:"type"`
	TotalLinks     int    `json:"totalLinks"`
	UsedLinks      int    `json:"usedLinks"`
	CompletionRate int    `json:"completionRate"`
}

// Dashboard is the caller's landing-page summary.
type Dashboard struct {
	TotalLinks           int                  `json:"totalLinks"`
	RemainingQuota       int                  `json:"remainingQuota"`
	TodayUsedLinks       int                  `json:"todayUsedLinks"`
	UnusedLinks          int                  `json:"unusedLinks"`
	ParticipationRate    int                  `json:"participationRate"`
	QuestionnaireSummary []QuestionnaireUsage `json:"questionnaireSummary"`
}

// percent returns round(part/whole*100), or 0 for an empty whole.
func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return (part*200 + whole) / (whole * 2)
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *Service) localNow() time.Time {
	return s.db.Now().In(s.location())
}

func (s *Service) location() *time.Location {
	if s.opts.Location != nil {
		return s.opts.Location
	}
	return time.Local
}

// Dashboard summarizes the caller's links and quota.
func (s *Service) Dashboard(ctx context.Context, p models.Principal) (*Dashboard, error) {
	var (
		acct   *models.Account
		links  []*models.Link
		qnames []string
	)
	err := s.db.View(ctx, func(tx *store.Tx) error {
		var err error
		if acct, err = s.db.Accounts.GetTx(tx, p.UserID); err != nil {
			return err
		}
		links, err = s.db.Links.ListByCreatorTx(tx, p.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	qs, err := s.db.Questionnaires.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range qs {
		qnames = append(qnames, q.Type)
	}

	today := dayStart(s.localNow())
	d := &Dashboard{
		TotalLinks:           len(links),
		RemainingQuota:       acct.RemainingQuota,
		QuestionnaireSummary: make([]QuestionnaireUsage, 0, len(qnames)),
	}
	used := 0
	perType := make(map[string]*QuestionnaireUsage, len(qnames))
	for _, name := range qnames {
		perType[name] = &QuestionnaireUsage{Type: name}
	}
	for _, l := range links {
		if l.UsedAt != nil && !l.UsedAt.Before(today) {
			d.TodayUsedLinks++
		}
		switch l.Status {
		case models.LinkUnused:
			d.UnusedLinks++
		case models.LinkUsed:
			used++
		}
		if u, ok := perType[l.QuestionnaireType]; ok {
			u.TotalLinks++
			if l.Status == models.LinkUsed {
				u.UsedLinks++
			}
		}
	}
	d.ParticipationRate = percent(used, len(links))
	for _, name := range qnames {
		u := perType[name]
		u.CompletionRate = percent(u.UsedLinks, u.TotalLinks)
		d.QuestionnaireSummary = append(d.QuestionnaireSummary, *u)
	}
	return d, nil
}

// ChartPoint is one day of link activity.
type ChartPoint struct {
	Date      string `json:"date"`
	Links     int    `json:"links"`
	UsageRate int    `json:"usageRate"`
}

// Chart is daily link creation over a period.
type Chart struct {
	Period string       `json:"period"`
	Data   []ChartPoint `json:"data"`
}

var chartPeriods = map[string]int{"7d": 7, "15d": 15, "30d": 30}

// Chart returns per-day created link counts and usage rate for the last
// 7, 15 or 30 days, oldest day first.
func (s *Service) Chart(ctx context.Context, p models.Principal, period string) (*Chart, error) {
	if period == "" {
		period = "7d"
	}
	days, ok := chartPeriods[period]
	if !ok {
		return nil, fmt.Errorf("%w: period must be 7d, 15d or 30d", models.ErrInvalidInput)
	}
	links, err := s.db.Links.ListByCreator(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	loc := s.location()
	type bucket struct{ total, used int }
	buckets := make(map[string]*bucket, days)
	today := dayStart(s.localNow())
	out := &Chart{Period: period, Data: make([]ChartPoint, 0, days)}
	for i := days - 1; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format(time.DateOnly)
		buckets[key] = &bucket{}
		out.Data = append(out.Data, ChartPoint{Date: key})
	}
	for _, l := range links {
		b, ok := buckets[l.CreatedAt.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		b.total++
		if l.Status == models.LinkUsed {
			b.used++
		}
	}
	for i := range out.Data {
		b := buckets[out.Data[i].Date]
		out.Data[i].Links = b.total
		out.Data[i].UsageRate = percent(b.used, b.total)
	}
	return out, nil
}

// Realtime is the lightweight polling view of the dashboard.
type Realtime struct {
	RemainingQuota int `json:"remainingQuota"`
	TodayUsedLinks int `json:"todayUsedLinks"`
}

// Realtime returns the caller's remaining quota and today's redemptions.
func (s *Service) Realtime(ctx context.Context, p models.Principal) (*Realtime, error) {
	d, err := s.Dashboard(ctx, p)
	if err != nil {
		return nil, err
	}
	return &Realtime{RemainingQuota: d.RemainingQuota, TodayUsedLinks: d.TodayUsedLinks}, nil
}

// TestSession is what a test taker sees when opening a link.
type TestSession struct {
	LinkID            string                `json:"linkId"`
	Status            models.LinkStatus     `json:"status"`
	QuestionnaireType string                `json:"questionnaireType"`
	ExpiredAt         *time.Time            `json:"expiredAt,omitempty"`
	Questionnaire     *models.Questionnaire `json:"questionnaire"`
}

// Resolve is the public lookup behind a link URL. It fails the same way
// Redeem would when the link can no longer be used.
func (s *Service) Resolve(ctx context.Context, linkID string) (*TestSession, error) {
	var out *TestSession
	err := s.db.View(ctx, func(tx *store.Tx) error {
		l, err := s.db.Links.GetTx(tx, linkID)
		if err != nil {
			return err
		}
		if err := checkRedeemable(l); err != nil {
			return err
		}
		if l.DueForExpiry(s.db.Now()) {
			return fmt.Errorf("%w: link %q has expired", models.ErrInvalidTransition, linkID)
		}
		q, err := s.db.Questionnaires.GetTx(tx, l.QuestionnaireType)
		if err != nil {
			return err
		}
		out = &TestSession{
			LinkID:            l.ID,
			Status:            l.Status,
			QuestionnaireType: l.QuestionnaireType,
			ExpiredAt:         l.ExpiredAt,
			Questionnaire:     q,
		}
		return nil
	})
	return out, err
}
