// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// GarbageCollector reclaims storage space.
type GarbageCollector interface {
	RunGC() error
}

// StorageGCService runs value-log GC on a fixed interval. A failed pass is
// logged and retried on the next tick.
type StorageGCService struct {
	gc       GarbageCollector
	interval time.Duration
	logger   zerolog.Logger
}

// NewStorageGCService creates the service; interval defaults to 10 minutes.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStorageGCService(gc GarbageCollector, interval time.Duration, logger zerolog.Logger) *StorageGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StorageGCService{
		gc:       gc,
		interval: interval,
		logger:   logger.With().Str("service", "storage-gc").Logger(),
	}
}

// Serve implements suture.Service.
func (s *StorageGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.gc.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("Storage GC failed")
				continue
			}
			s.logger.Debug().Dur("duration", time.Since(start)).Msg("Storage GC completed")
		}
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *StorageGCService) String() string {
	return "storage-gc"
}
