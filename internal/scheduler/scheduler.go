// Package scheduler runs the periodic environmental data refresh.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher refreshes the environmental records of every river.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// Scheduler triggers a Refresher on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	timeout   time.Duration
	logger    *slog.Logger
	spec      string
}

// New parses spec (standard five-field cron syntax or a descriptor such as
// @hourly) and returns a Scheduler. Each run is bounded by timeout.
func New(spec string, r Refresher, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse refresh schedule %q: %w", spec, err)
	}
	return &Scheduler{
		cron:      cron.New(),
		refresher: r,
		timeout:   timeout,
		logger:    logger,
		spec:      spec,
	}, nil
}

// Run refreshes once immediately, then on every tick until ctx is cancelled.
// It waits for a running refresh to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	s.refresh(ctx)

	if _, err := s.cron.AddFunc(s.spec, func() { s.refresh(ctx) }); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	s.logger.Info("refresh scheduled", "schedule", s.spec)
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("refresh scheduler stopped")
	return nil
}

func (s *Scheduler) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.RefreshAll(ctx); err != nil {
		s.logger.Error("scheduled refresh failed", "error", err)
		return
	}
	s.logger.Info("environmental data refreshed", "duration", time.Since(start))
}
