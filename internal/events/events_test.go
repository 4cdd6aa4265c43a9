// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/profile"
)

func TestBus_PublishAndSubscribe(t *testing.T) {
	t.Parallel()

	bus := NewBus(DefaultBusConfig(), zerolog.Nop())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx, TopicSearchCompleted)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := bus.PublishSearchCompleted(ctx, SearchCompleted{UserID: "u1", Keyword: "다이어트", At: at}); err != nil {
		t.Fatalf("PublishSearchCompleted() error = %v", err)
	}

	select {
	case msg := <-messages:
		ev, err := DecodeSearchCompleted(msg)
		if err != nil {
			t.Fatalf("DecodeSearchCompleted() error = %v", err)
		}
		if ev.UserID != "u1" || ev.Keyword != "다이어트" || !ev.At.Equal(at) {
			t.Errorf("Unexpected event: %+v", ev)
		}
		if ev.EventID == "" || msg.UUID != ev.EventID {
			t.Errorf("Expected message UUID to match event id, got %q and %q", msg.UUID, ev.EventID)
		}
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestBus_IgnoresAnonymousEvents(t *testing.T) {
	t.Parallel()

	bus := NewBus(DefaultBusConfig(), zerolog.Nop())
	defer bus.Close()

	if err := bus.PublishSearchCompleted(context.Background(), SearchCompleted{Keyword: "k"}); err != nil {
		t.Errorf("Expected nil error for anonymous event, got %v", err)
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	t.Parallel()

	bus := NewBus(DefaultBusConfig(), zerolog.Nop())
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("Expected second Close to succeed, got %v", err)
	}

	err := bus.PublishSearchCompleted(context.Background(), SearchCompleted{UserID: "u", Keyword: "k"})
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("Expected ErrBusClosed, got %v", err)
	}
}

// flakyStore fails the first failures calls to Learn.
type flakyStore struct {
	*profile.MemoryStore
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *flakyStore) Learn(ctx context.Context, userID string, keywords []string) error {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.failures
	s.mu.Unlock()
	if fail {
		return errors.New("store unavailable")
	}
	return s.MemoryStore.Learn(ctx, userID, keywords)
}

func (s *flakyStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func startLearner(t *testing.T, bus *Bus, store profile.Store) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	learner := NewLearner(bus, store, zerolog.Nop())
	go func() {
		defer close(done)
		_ = learner.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestLearner_LearnsKeywords(t *testing.T) {
	t.Parallel()

	bus := NewBus(DefaultBusConfig(), zerolog.Nop())
	defer bus.Close()
	store := profile.NewMemoryStore()
	startLearner(t, bus, store)

	// The subscription is registered asynchronously.
	waitFor(t, func() bool {
		_ = bus.PublishSearchCompleted(context.Background(), SearchCompleted{UserID: "u1", Keyword: "홈트"})
		interests, _ := store.Interests(context.Background(), "u1")
		return interests["홈트"] > 0
	})
}

func TestLearner_RedeliversOnFailure(t *testing.T) {
	t.Parallel()

	bus := NewBus(DefaultBusConfig(), zerolog.Nop())
	defer bus.Close()
	store := &flakyStore{MemoryStore: profile.NewMemoryStore(), failures: 1}
	startLearner(t, bus, store)

	waitFor(t, func() bool {
		if store.callCount() == 0 {
			_ = bus.PublishSearchCompleted(context.Background(), SearchCompleted{UserID: "u2", Keyword: "요리"})
		}
		interests, _ := store.Interests(context.Background(), "u2")
		return interests["요리"] >= 1
	})
	if calls := store.callCount(); calls < 2 {
		t.Errorf("Expected a redelivery after failure, got %d calls", calls)
	}
}

func TestLearner_DropsAfterMaxDeliveries(t *testing.T) {
	t.Parallel()

	l := NewLearner(nil, profile.NewMemoryStore(), zerolog.Nop())
	for i := 1; i < DefaultMaxDeliveries; i++ {
		if !l.retry("m1") {
			t.Fatalf("Expected retry %d to be allowed", i)
		}
	}
	if l.retry("m1") {
		t.Error("Expected retry to be refused after max deliveries")
	}
	if len(l.attempts) != 0 {
		t.Errorf("Expected attempts to be cleared, got %d", len(l.attempts))
	}
}
