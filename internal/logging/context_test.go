// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	a, b := GenerateRequestID(), GenerateRequestID()
	if len(a) != 36 {
		t.Errorf("expected UUID length 36, got %d", len(a))
	}
	if a == b {
		t.Error("expected unique request IDs")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}

	ctx = ContextWithRequestID(ctx, "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
}

func TestCtxAddsRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-abc")

	Ctx(ctx).Info().Msg("scored")

	if !strings.Contains(buf.String(), `"request_id":"req-abc"`) {
		t.Errorf("expected request_id in output, got: %s", buf.String())
	}
}

func TestLoggerFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	logger := LoggerFromContext(context.Background())
	if logger.GetLevel() != Logger().GetLevel() {
		t.Error("expected global logger when context carries none")
	}
}
