// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/metrics"
)

// QuotaResetter clears credential exhaustion flags.
type QuotaResetter interface {
	Reset() int
}

// QuotaResetService runs the daily quota reset on a cron schedule evaluated
// in the quota time zone.
type QuotaResetService struct {
	resetter QuotaResetter
	spec     string
	loc      *time.Location
	logger   zerolog.Logger
}

// NewQuotaResetService validates spec (standard five-field cron or a
// descriptor such as @daily) and creates the service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewQuotaResetService(resetter QuotaResetter, spec string, loc *time.Location, logger zerolog.Logger) (*QuotaResetService, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid reset schedule %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &QuotaResetService{
		resetter: resetter,
		spec:     spec,
		loc:      loc,
		logger:   logger.With().Str("service", "quota-reset").Logger(),
	}, nil
}

// Serve implements suture.Service.
func (s *QuotaResetService) Serve(ctx context.Context) error {
	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("schedule quota reset: %w", err)
	}

	c.Start()
	s.logger.Info().Str("schedule", s.spec).Str("timezone", s.loc.String()).
		Time("next", s.Next(time.Now())).Msg("Quota reset scheduled")

	<-ctx.Done()

	// Wait for a reset in progress to finish.
	<-c.Stop().Done()
	return ctx.Err()
}

// RunOnce performs one scheduled reset.
func (s *QuotaResetService) RunOnce() {
	cleared := s.resetter.Reset()
	metrics.QuotaResets.WithLabelValues("schedule").Inc()
	s.logger.Info().Int("cleared", cleared).Msg("Scheduled quota reset")
}

// Next returns the first activation after t.
func (s *QuotaResetService) Next(t time.Time) time.Time {
	schedule, err := cron.ParseStandard(s.spec)
	if err != nil {
		return time.Time{}
	}
	return schedule.Next(t.In(s.loc))
}

// String implements fmt.Stringer for suture's logs.
func (s *QuotaResetService) String() string {
	return "quota-reset"
}
