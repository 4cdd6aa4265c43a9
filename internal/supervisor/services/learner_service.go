// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventConsumer consumes events until ctx ends or its source closes.
type EventConsumer interface {
	Run(ctx context.Context) error
}

// LearnerService supervises the profile learner.
type LearnerService struct {
	consumer EventConsumer
}

// NewLearnerService wraps consumer.
func NewLearnerService(consumer EventConsumer) *LearnerService {
	return &LearnerService{consumer: consumer}
}

// Serve implements suture.Service. A closed source ends the service for
// good; restarting cannot reopen it.
func (s *LearnerService) Serve(ctx context.Context) error {
	err := s.consumer.Run(ctx)
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		return fmt.Errorf("profile learner failed: %w", err)
	default:
		return suture.ErrDoNotRestart
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *LearnerService) String() string {
	return "profile-learner"
}
