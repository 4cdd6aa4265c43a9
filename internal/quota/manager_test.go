// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package quota

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestManager(t *testing.T, limit int, creds ...string) (*Manager, *testClock) {
	t.Helper()
	m, err := NewManager(Config{DailyLimit: limit, TimeZone: "UTC"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	clock := &testClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	m.WithClock(clock.Now)
	m.SetCredentials(creds)
	return m, clock
}

func TestNewManager_InvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewManager(Config{DailyLimit: 0}, zerolog.Nop()); err == nil {
		t.Error("Expected error for zero daily limit")
	}
	if _, err := NewManager(Config{DailyLimit: 10, TimeZone: "Nowhere/City"}, zerolog.Nop()); err == nil {
		t.Error("Expected error for unknown timezone")
	}
}

func TestManager_Register(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, DefaultDailyLimit)

	tests := []struct {
		name    string
		raw     string
		want    bool
		wantErr error
	}{
		{"accepted", "key-alpha", true, nil},
		{"blank", "   ", false, ErrBlankCredential},
		{"duplicate", "key-alpha", false, ErrDuplicateCredential},
		{"duplicate after trim", "  key-alpha ", false, ErrDuplicateCredential},
		{"second accepted", "key-beta", true, nil},
	}

	for _, tt := range tests {
		got, err := m.Register(tt.raw)
		if got != tt.want || !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: Register(%q) = %v, %v; want %v, %v", tt.name, tt.raw, got, err, tt.want, tt.wantErr)
		}
	}
	if m.Len() != 2 {
		t.Errorf("Expected 2 credentials, got %d", m.Len())
	}
}

func TestManager_SetCredentials(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, DefaultDailyLimit)

	if n := m.SetCredentials([]string{"a-key", "", "b-key", "a-key", " c-key "}); n != 3 {
		t.Errorf("Expected 3 accepted, got %d", n)
	}
	if n := m.SetCredentials(nil); n != 0 {
		t.Errorf("Expected empty pool, got %d", n)
	}
	if _, err := m.Next(); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials on empty pool, got %v", err)
	}
}

func TestManager_AllAtCeiling(t *testing.T) {
	t.Parallel()

	creds := make([]string, 10)
	for i := range creds {
		creds[i] = fmt.Sprintf("credential-%02d", i)
	}
	m, _ := newTestManager(t, DefaultDailyLimit, creds...)
	for _, c := range creds {
		if err := m.RecordUsage(c, DefaultDailyLimit); err != nil {
			t.Fatalf("RecordUsage() error = %v", err)
		}
	}

	if _, err := m.Next(); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials, got %v", err)
	}
	if _, err := m.Acquire(100); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials from Acquire, got %v", err)
	}
	if m.HasAvailable() {
		t.Error("Expected HasAvailable() false")
	}
}

func TestManager_SingleCallReachesCeiling(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 9500, "only-key")

	if err := m.RecordUsage("only-key", 9500); err != nil {
		t.Fatalf("RecordUsage() error = %v", err)
	}

	status := m.Status()
	if !status[0].Exhausted {
		t.Error("Expected credential exhausted immediately after reaching the ceiling")
	}
	if status[0].Remaining != 0 || status[0].Usage != 9500 {
		t.Errorf("Expected usage 9500 remaining 0, got %+v", status[0])
	}
}

func TestManager_NeverReturnsExhausted(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 1000, "k1", "k2", "k3")

	if err := m.MarkExhausted("k1"); err != nil {
		t.Fatalf("MarkExhausted() error = %v", err)
	}
	if err := m.RecordUsage("k3", 1000); err != nil {
		t.Fatalf("RecordUsage() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		got, err := m.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got != "k2" {
			t.Fatalf("Expected only k2 eligible, got %s", got)
		}
		m.Advance()
	}
}

func TestManager_Rotation(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 1000, "k1", "k2", "k3")

	first, _ := m.Next()
	again, _ := m.Next()
	if first != "k1" || again != "k1" {
		t.Errorf("Expected Next to stay on k1 until advanced, got %s then %s", first, again)
	}

	m.Advance()
	if got, _ := m.Next(); got != "k2" {
		t.Errorf("Expected k2 after Advance, got %s", got)
	}

	_ = m.MarkExhausted("k3")
	m.Advance()
	if got, _ := m.Next(); got != "k1" {
		t.Errorf("Expected wrap-around past exhausted k3 to k1, got %s", got)
	}
}

func TestManager_UnknownCredential(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 1000, "k1")

	if err := m.RecordUsage("nope", 10); !errors.Is(err, ErrUnknownCredential) {
		t.Errorf("Expected ErrUnknownCredential, got %v", err)
	}
	if err := m.MarkExhausted("nope"); !errors.Is(err, ErrUnknownCredential) {
		t.Errorf("Expected ErrUnknownCredential, got %v", err)
	}
}

func TestManager_StatusIdempotent(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 1000, "alpha-credential-value-long", "beta")
	_ = m.RecordUsage("beta", 300)

	first := m.Status()
	second := m.Status()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical status, got %+v and %+v", first, second)
	}

	want := []CredentialStatus{
		{Credential: "alpha-credential-val...", Usage: 0, Limit: 1000, Remaining: 1000},
		{Credential: "beta...", Usage: 300, Limit: 1000, Remaining: 700},
	}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("Status() = %+v, want %+v", first, want)
	}
}

func TestManager_AcquireAndRelease(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 1000, "k1")

	lease, err := m.Acquire(100)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if lease.Credential != "k1" || lease.Units != 100 {
		t.Errorf("Unexpected lease %+v", lease)
	}
	if got := m.Status()[0].Usage; got != 100 {
		t.Errorf("Expected 100 reserved, got %d", got)
	}

	m.Release(lease)
	if got := m.Status()[0].Usage; got != 0 {
		t.Errorf("Expected refund to 0, got %d", got)
	}

	if _, err := m.Acquire(-1); err == nil {
		t.Error("Expected error for negative units")
	}
}

func TestManager_ReleaseBelowCeilingRestoresCredential(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 1000, "k1")

	if err := m.RecordUsage("k1", 900); err != nil {
		t.Fatalf("RecordUsage() error = %v", err)
	}
	lease, err := m.Acquire(100)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !m.Status()[0].Exhausted {
		t.Fatal("Expected reservation at the ceiling to exhaust the credential")
	}

	m.Release(lease)
	status := m.Status()[0]
	if status.Exhausted || status.Usage != 900 {
		t.Errorf("Expected credential eligible again at 900, got %+v", status)
	}
	if got, err := m.Next(); err != nil || got != "k1" {
		t.Errorf("Expected k1 after refund, got %q, %v", got, err)
	}
}

func TestManager_ReleaseKeepsUpstreamExhaustion(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 100, "k1")

	lease, err := m.Acquire(100)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := m.MarkExhausted("k1"); err != nil {
		t.Fatalf("MarkExhausted() error = %v", err)
	}
	m.Release(lease)

	status := m.Status()[0]
	if !status.Exhausted || status.Usage != 0 {
		t.Errorf("Expected exhausted with usage refunded, got %+v", status)
	}
	if _, err := m.Next(); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials, got %v", err)
	}
}

func TestManager_AcquireIsAtomic(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 1000, "k1")

	var granted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Acquire(100); err == nil {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	if granted.Load() != 10 {
		t.Errorf("Expected exactly 10 reservations of 100 under a 1000 ceiling, got %d", granted.Load())
	}
	if got := m.Status()[0].Usage; got != 1000 {
		t.Errorf("Expected usage 1000, got %d", got)
	}
}

func TestManager_Reset(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 1000, "k1", "k2")

	_ = m.MarkExhausted("k1")
	_ = m.RecordUsage("k2", 1000)

	if cleared := m.Reset(); cleared != 2 {
		t.Errorf("Expected 2 flags cleared, got %d", cleared)
	}

	status := m.Status()
	if status[0].Exhausted || status[1].Exhausted {
		t.Errorf("Expected no exhausted credentials, got %+v", status)
	}
	if status[1].Usage != 1000 {
		t.Errorf("Expected usage kept after reset, got %d", status[1].Usage)
	}
	if got, err := m.Next(); err != nil || got != "k1" {
		t.Errorf("Expected k1 eligible and k2 still at ceiling, got %s, %v", got, err)
	}
}

func TestManager_DayRollover(t *testing.T) {
	t.Parallel()
	m, clock := newTestManager(t, 1000, "k1")

	_ = m.RecordUsage("k1", 1000)
	clock.Set(clock.Now().Add(24 * time.Hour))

	status := m.Status()[0]
	if status.Usage != 0 {
		t.Errorf("Expected usage to start at 0 on a new day, got %d", status.Usage)
	}
	if !status.Exhausted {
		t.Error("Expected exhaustion to persist until Reset")
	}

	m.Reset()
	if _, err := m.Next(); err != nil {
		t.Errorf("Expected credential available after reset on a new day, got %v", err)
	}
}

func TestManager_ReleasePreviousDayIgnored(t *testing.T) {
	t.Parallel()
	m, clock := newTestManager(t, 1000, "k1")

	lease, _ := m.Acquire(100)
	clock.Set(clock.Now().Add(24 * time.Hour))
	_ = m.RecordUsage("k1", 50)
	m.Release(lease)

	if got := m.Status()[0].Usage; got != 50 {
		t.Errorf("Expected stale lease ignored, got usage %d", got)
	}
}

type memoryUsageStore struct {
	mu    sync.Mutex
	usage map[string]map[string]int
	err   error
}

func (s *memoryUsageStore) LoadUsage(_ context.Context, day string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]int)
	for id, units := range s.usage[day] {
		out[id] = units
	}
	return out, nil
}

func (s *memoryUsageStore) SaveUsage(_ context.Context, day, id string, units int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.usage[day] == nil {
		s.usage[day] = make(map[string]int)
	}
	s.usage[day][id] = units
	return nil
}

func TestManager_PersistAndRestore(t *testing.T) {
	t.Parallel()
	store := &memoryUsageStore{usage: make(map[string]map[string]int)}

	m, clock := newTestManager(t, 1000, "k1", "k2")
	m.WithStore(store)
	_ = m.RecordUsage("k1", 400)
	_ = m.RecordUsage("k2", 1000)

	if got := store.usage["2026-05-01"][CredentialID("k1")]; got != 400 {
		t.Errorf("Expected 400 persisted for k1, got %d", got)
	}

	restarted, err := NewManager(Config{DailyLimit: 1000, TimeZone: "UTC"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	restarted.WithClock(clock.Now).WithStore(store)
	restarted.SetCredentials([]string{"k1", "k2"})
	if err := restarted.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	status := restarted.Status()
	if status[0].Usage != 400 || status[0].Exhausted {
		t.Errorf("Expected k1 restored at 400, got %+v", status[0])
	}
	if status[1].Usage != 1000 || !status[1].Exhausted {
		t.Errorf("Expected k2 restored exhausted, got %+v", status[1])
	}
}

type gatedUsageStore struct {
	memoryUsageStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *gatedUsageStore) SaveUsage(ctx context.Context, day, id string, units int) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return s.memoryUsageStore.SaveUsage(ctx, day, id, units)
}

func TestManager_PersistKeepsLatestTotal(t *testing.T) {
	t.Parallel()
	store := &gatedUsageStore{
		memoryUsageStore: memoryUsageStore{usage: make(map[string]map[string]int)},
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	m, _ := newTestManager(t, 1000, "k1")
	m.WithStore(store)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = m.Acquire(100)
	}()
	<-store.entered

	go func() {
		defer wg.Done()
		_, _ = m.Acquire(100)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for m.Status()[0].Usage != 200 {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for second reservation")
		}
		time.Sleep(time.Millisecond)
	}

	close(store.release)
	wg.Wait()

	store.mu.Lock()
	got := store.usage["2026-05-01"][CredentialID("k1")]
	store.mu.Unlock()
	if got != 200 {
		t.Errorf("Expected stored total 200, got %d", got)
	}
}

func TestManager_StoreFailureDoesNotFailCalls(t *testing.T) {
	t.Parallel()
	store := &memoryUsageStore{err: errors.New("disk full")}
	m, _ := newTestManager(t, 1000, "k1")
	m.WithStore(store)

	if _, err := m.Acquire(100); err != nil {
		t.Errorf("Expected Acquire to succeed despite store failure, got %v", err)
	}
	if err := m.Restore(context.Background()); err == nil {
		t.Error("Expected Restore to report the store failure")
	}
}

func TestMask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnopqrst..."},
		{"abcdefghijklmnopqrst", "abcd..."},
		{"abc", "abc..."},
		{"", "..."},
	}
	for _, tt := range tests {
		if got := Mask(tt.raw); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCredentialID(t *testing.T) {
	t.Parallel()

	if CredentialID("a") == CredentialID("b") {
		t.Error("Expected distinct ids for distinct credentials")
	}
	if CredentialID("a") != CredentialID("a") {
		t.Error("Expected stable ids")
	}
	if len(CredentialID("a")) != 16 {
		t.Errorf("Expected 16 hex chars, got %d", len(CredentialID("a")))
	}
}
