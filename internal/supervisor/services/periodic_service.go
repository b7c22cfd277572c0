// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package services

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/assesslink/internal/logging"
)

// Job is one run of a periodic task. It returns how many items it
// touched, for logging.
type Job func(ctx context.Context) (int, error)

// PeriodicService runs a Job every interval until canceled.
//
//	sweep := services.NewPeriodicService("link-sweeper", cfg.Links.SweepInterval,
//	    func(ctx context.Context) (int, error) { return links.ExpireDue(ctx, time.Now()) })
//	tree.AddMaintenanceService(sweep)
type PeriodicService struct {
	name     string
	interval time.Duration
	job      Job
	// runOnStart runs the job once before the first tick.
	runOnStart bool
}

// NewPeriodicService creates a periodic job. A non-positive interval is
// replaced by one minute.
func NewPeriodicService(name string, interval time.Duration, job Job) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{name: name, interval: interval, job: job}
}

// RunOnStart makes the service run the job immediately when it starts.
func (s *PeriodicService) RunOnStart() *PeriodicService {
	s.runOnStart = true
	return s
}

// Serve implements suture.Service. Job failures are logged and retried on
// the next tick rather than restarting the service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	logger := logging.WithComponent(s.name)
	logger.Debug().Dur("interval", s.interval).Msg("Periodic job started")

	if s.runOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *PeriodicService) runOnce(ctx context.Context) {
	logger := logging.WithComponent(s.name)
	ctx = logging.ContextWithLogger(logging.ContextWithNewCorrelationID(ctx), logger)
	start := time.Now()
	n, err := s.job(ctx)
	switch {
	case err != nil && errors.Is(err, ctx.Err()):
		// Shutting down.
	case err != nil:
		logger.Warn().Err(err).Int("items", n).Msg("Periodic job failed")
	case n > 0:
		logger.Info().Int("items", n).Dur("took", time.Since(start)).Msg("Periodic job completed")
	}
}

// String implements fmt.Stringer.
func (s *PeriodicService) String() string {
	return s.name
}
