// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/metrics"
	"github.com/tomtom215/keyscope/internal/profile"
)

// DefaultMaxDeliveries bounds redelivery of a message whose handling failed.
const DefaultMaxDeliveries = 3

// Subscriber delivers messages for a topic.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Learner feeds searched keywords into user interest profiles.
type Learner struct {
	source        Subscriber
	store         profile.Store
	logger        zerolog.Logger
	maxDeliveries int

	mu       sync.Mutex
	attempts map[string]int
}

// NewLearner creates a learner consuming search.completed from source.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLearner(source Subscriber, store profile.Store, logger zerolog.Logger) *Learner {
	return &Learner{
		source:        source,
		store:         store,
		logger:        logger.With().Str("component", "learner").Logger(),
		maxDeliveries: DefaultMaxDeliveries,
		attempts:      make(map[string]int),
	}
}

// Run consumes events until ctx is canceled or the subscription ends.
// A message is acked once learned and nacked on failure; after
// maxDeliveries failed attempts it is acked and dropped.
func (l *Learner) Run(ctx context.Context) error {
	messages, err := l.source.Subscribe(ctx, TopicSearchCompleted)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", TopicSearchCompleted, err)
	}

	l.logger.Info().Msg("Learner started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			l.handle(ctx, msg)
		}
	}
}

func (l *Learner) handle(ctx context.Context, msg *message.Message) {
	ev, err := DecodeSearchCompleted(msg)
	if err != nil {
		// Redelivery cannot fix a malformed payload.
		l.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed event")
		metrics.EventsProcessed.WithLabelValues(TopicSearchCompleted, "malformed").Inc()
		msg.Ack()
		return
	}

	if err := l.store.Learn(ctx, ev.UserID, []string{ev.Keyword}); err != nil {
		if l.retry(msg.UUID) {
			l.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Learning failed, redelivering")
			metrics.EventsProcessed.WithLabelValues(TopicSearchCompleted, "retry").Inc()
			msg.Nack()
			return
		}
		l.logger.Error().Err(err).Str("message_uuid", msg.UUID).Str("user_id", ev.UserID).Msg("Learning failed, dropping event")
		metrics.EventsProcessed.WithLabelValues(TopicSearchCompleted, "dropped").Inc()
		msg.Ack()
		return
	}

	l.forget(msg.UUID)
	metrics.EventsProcessed.WithLabelValues(TopicSearchCompleted, "success").Inc()
	l.logger.Debug().Str("user_id", ev.UserID).Str("keyword", ev.Keyword).Msg("Interest learned")
	msg.Ack()
}

// retry records a failed attempt and reports whether another is allowed.
func (l *Learner) retry(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[id]++
	if l.attempts[id] >= l.maxDeliveries {
		delete(l.attempts, id)
		return false
	}
	return true
}

func (l *Learner) forget(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, id)
}
