// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package events carries in-process domain events over a Watermill
// go-channel pub/sub.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/logging"
	"github.com/tomtom215/keyscope/internal/metrics"
)

// TopicSearchCompleted is published after a successful search.
const TopicSearchCompleted = "search.completed"

// ErrBusClosed is returned when publishing on a closed bus.
var ErrBusClosed = errors.New("event bus closed")

// SearchCompleted records that a user searched for a keyword.
type SearchCompleted struct {
	EventID string    `json:"event_id"`
	UserID  string    `json:"user_id"`
	Keyword string    `json:"keyword"`
	At      time.Time `json:"at"`
}

// BusConfig configures the in-process bus.
type BusConfig struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64 `koanf:"output_buffer" json:"output_buffer"`
}

// DefaultBusConfig returns defaults.
func DefaultBusConfig() BusConfig {
	return BusConfig{OutputBuffer: 256}
}

// Bus publishes and delivers events in process.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBus(cfg BusConfig, logger zerolog.Logger) *Bus {
	logger = logger.With().Str("component", "events").Logger()
	wmLogger := watermill.NewSlogLogger(slog.New(logging.NewSlogHandler(logger)))

	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputBuffer,
		}, wmLogger),
		logger: logger,
	}
}

// PublishSearchCompleted publishes ev. Events without a user are ignored.
func (b *Bus) PublishSearchCompleted(ctx context.Context, ev SearchCompleted) error {
	if strings.TrimSpace(ev.UserID) == "" {
		return nil
	}
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(ev.EventID, data)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	if err := b.pubsub.Publish(TopicSearchCompleted, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicSearchCompleted, err)
	}
	metrics.EventsPublished.WithLabelValues(TopicSearchCompleted).Inc()
	return nil
}

// Subscribe returns messages of topic until ctx is canceled or the bus closes.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the bus down. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}

// DecodeSearchCompleted parses a search.completed payload.
func DecodeSearchCompleted(msg *message.Message) (SearchCompleted, error) {
	var ev SearchCompleted
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("decode %s: %w", TopicSearchCompleted, err)
	}
	return ev, nil
}
