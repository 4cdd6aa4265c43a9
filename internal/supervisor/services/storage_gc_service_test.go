// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeCollector struct {
	runs atomic.Int32
	err  error
}

func (f *fakeCollector) RunGC() error {
	f.runs.Add(1)
	return f.err
}

func TestNewStorageGCService_DefaultInterval(t *testing.T) {
	t.Parallel()

	svc := NewStorageGCService(&fakeCollector{}, 0, discardLogger())
	if svc.interval != 10*time.Minute {
		t.Errorf("Expected default interval 10m, got %v", svc.interval)
	}
	if svc.String() != "storage-gc" {
		t.Errorf("Expected name storage-gc, got %s", svc.String())
	}
}

func TestStorageGCService_Serve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"successful passes", nil},
		{"failures keep ticking", errors.New("nothing to collect")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gc := &fakeCollector{err: tt.err}
			svc := NewStorageGCService(gc, 5*time.Millisecond, discardLogger())

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) && gc.runs.Load() < 2 {
				time.Sleep(5 * time.Millisecond)
			}
			cancel()

			if err := <-errCh; !errors.Is(err, context.Canceled) {
				t.Errorf("Expected context.Canceled, got %v", err)
			}
			if gc.runs.Load() < 2 {
				t.Errorf("Expected at least 2 GC passes, got %d", gc.runs.Load())
			}
		})
	}
}
