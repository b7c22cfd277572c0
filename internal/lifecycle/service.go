// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package lifecycle

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/events"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/quota"
)

// DefaultMaxBatch caps how many links a single Issue call may mint.
const DefaultMaxBatch = 100

// Options tunes a Service.
type Options struct {
	// PublicBaseURL prefixes link URLs: <PublicBaseURL>/test/<id>.
	PublicBaseURL string
	MaxBatch      int
	// SweepRate caps expiry writes per second. Zero means unlimited.
	SweepRate float64
	// Location decides where "today" starts for dashboard counts.
	// Defaults to time.Local.
	Location *time.Location
}

// OptionsFrom builds Options from application config.
func OptionsFrom(server *config.ServerConfig, links *config.LinksConfig) Options {
	return Options{
		PublicBaseURL: server.PublicBaseURL,
		MaxBatch:      links.MaxBatch,
		SweepRate:     links.SweepRate,
	}
}

// Service implements link issuance, redemption and management.
type Service struct {
	db        *database.DB
	ledger    *quota.Ledger
	publisher events.Publisher
	opts      Options
	limiter   *rate.Limiter
}

// NewService returns a Service. A nil publisher drops events.
func NewService(db *database.DB, ledger *quota.Ledger, publisher events.Publisher, opts Options) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if opts.MaxBatch <= 0 || opts.MaxBatch > DefaultMaxBatch {
		opts.MaxBatch = DefaultMaxBatch
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")

	limit := rate.Inf
	burst := 1
	if opts.SweepRate > 0 {
		limit = rate.Limit(opts.SweepRate)
		burst = max(1, int(opts.SweepRate))
	}
	return &Service{
		db:        db,
		ledger:    ledger,
		publisher: publisher,
		opts:      opts,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// URLFor returns the public test-taker URL of a link id.
func (s *Service) URLFor(linkID string) string {
	return s.opts.PublicBaseURL + "/test/" + linkID
}

// publish sends an event after commit. Failures are logged and dropped:
// link state is authoritative, notifications are best effort.
func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("topic", topic).Msg("Failed to publish event")
	}
}

// authorize checks the principal may act on l.
func (s *Service) authorize(p models.Principal, l *models.Link) error {
	if !p.CanAccess(l.CreatedBy) {
		return forbidden(l.ID)
	}
	return nil
}
