// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package quota

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/metrics"
)

// Errors returned by the manager.
var (
	// ErrNoCredentials is returned when a full rotation finds no eligible credential.
	ErrNoCredentials = errors.New("no credential available")

	// ErrBlankCredential is returned when registering an empty value.
	ErrBlankCredential = errors.New("credential is blank")

	// ErrDuplicateCredential is returned when registering a known value.
	ErrDuplicateCredential = errors.New("credential already registered")

	// ErrUnknownCredential is returned for operations on unregistered values.
	ErrUnknownCredential = errors.New("credential not registered")
)

// Exhaustion reasons, used as metric labels.
const (
	ReasonCeiling  = "ceiling"
	ReasonUpstream = "upstream"
)

const (
	// DefaultDailyLimit is the per-credential unit ceiling per day.
	DefaultDailyLimit = 9500

	dayLayout    = "2006-01-02"
	storeTimeout = 2 * time.Second
)

// Config configures a Manager.
type Config struct {
	// DailyLimit is the unit ceiling per credential per day.
	DailyLimit int `koanf:"daily_limit" json:"daily_limit" validate:"gt=0"`

	// TimeZone decides where calendar days begin.
	TimeZone string `koanf:"timezone" json:"timezone"`
}

// CredentialStatus is the public view of one credential.
type CredentialStatus struct {
	Credential string `json:"key"`
	Usage      int    `json:"usage"`
	Limit      int    `json:"limit"`
	Exhausted  bool   `json:"exhausted"`
	Remaining  int    `json:"remaining"`
}

// Lease is a reservation of units on one credential for a single call.
type Lease struct {
	Credential string
	Units      int
	day        string
}

// Masked returns the masked form of the leased credential.
func (l Lease) Masked() string {
	return Mask(l.Credential)
}

type credential struct {
	raw       string
	id        string
	masked    string
	usage     map[string]int
	exhausted bool
	reason    string
}

func (c *credential) used(day string) int {
	return c.usage[day]
}

// Manager owns the credential pool. All state is guarded by one mutex; no
// method performs I/O while holding it. Store writes are serialized by
// persistMu and always carry the counter current at write time.
type Manager struct {
	mu        sync.Mutex
	persistMu sync.Mutex

	creds  []*credential
	byRaw  map[string]*credential
	cursor int

	limit  int
	loc    *time.Location
	now    func() time.Time
	store  UsageStore
	logger zerolog.Logger
}

// NewManager creates an empty manager.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewManager(cfg Config, logger zerolog.Logger) (*Manager, error) {
	if cfg.DailyLimit <= 0 {
		return nil, fmt.Errorf("daily limit must be positive, got %d", cfg.DailyLimit)
	}
	loc := time.UTC
	if cfg.TimeZone != "" {
		l, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.TimeZone, err)
		}
		loc = l
	}
	return &Manager{
		byRaw:  make(map[string]*credential),
		limit:  cfg.DailyLimit,
		loc:    loc,
		now:    time.Now,
		logger: logger.With().Str("component", "quota").Logger(),
	}, nil
}

// WithClock replaces the time source. Intended for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

// WithStore attaches a usage store. Call Restore afterwards to load today's
// counters.
func (m *Manager) WithStore(store UsageStore) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = store
	return m
}

// Register adds raw to the end of the rotation. It reports whether the value
// was accepted; blank and already-registered values are rejected.
func (m *Manager) Register(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, ErrBlankCredential
	}

	m.mu.Lock()
	if _, dup := m.byRaw[raw]; dup {
		m.mu.Unlock()
		return false, ErrDuplicateCredential
	}
	c := m.add(raw)
	total := len(m.creds)
	m.publishLocked()
	m.mu.Unlock()

	m.logger.Info().Str("credential", c.masked).Int("total", total).Msg("Credential registered")
	return true, nil
}

// SetCredentials replaces the pool with raws, skipping blank and repeated
// values, and rewinds the cursor. It returns the number accepted.
func (m *Manager) SetCredentials(raws []string) int {
	m.mu.Lock()
	m.creds = nil
	m.byRaw = make(map[string]*credential, len(raws))
	m.cursor = 0
	for _, raw := range raws {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, dup := m.byRaw[raw]; dup {
			continue
		}
		m.add(raw)
	}
	total := len(m.creds)
	m.publishLocked()
	m.mu.Unlock()

	m.logger.Info().Int("total", total).Msg("Credential pool replaced")
	return total
}

func (m *Manager) add(raw string) *credential {
	c := &credential{
		raw:    raw,
		id:     CredentialID(raw),
		masked: Mask(raw),
		usage:  make(map[string]int),
	}
	m.creds = append(m.creds, c)
	m.byRaw[raw] = c
	return c
}

// Next returns the first eligible credential at or after the cursor and
// moves the cursor onto it. It never returns an exhausted credential.
func (m *Manager) Next() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.selectLocked(m.today())
	if c == nil {
		return "", ErrNoCredentials
	}
	return c.raw, nil
}

// Acquire selects a credential like Next and reserves units on it in the
// same critical section. A reservation that reaches the ceiling exhausts the
// credential immediately.
func (m *Manager) Acquire(units int) (Lease, error) {
	if units < 0 {
		return Lease{}, fmt.Errorf("units must be non-negative, got %d", units)
	}

	m.mu.Lock()
	day := m.today()
	c := m.selectLocked(day)
	if c == nil {
		m.mu.Unlock()
		return Lease{}, ErrNoCredentials
	}
	used, crossed := m.addUsageLocked(c, day, units)
	m.publishLocked()
	m.mu.Unlock()

	if crossed {
		m.logger.Warn().Str("credential", c.masked).Int("usage", used).Msg("Credential reached daily limit")
	}
	m.persist(day, c)
	return Lease{Credential: c.raw, Units: units, day: day}, nil
}

// Release refunds a lease whose call did not consume quota. When the lease
// itself pushed the credential to the ceiling and the refund drops usage
// below it again, the credential becomes eligible. Exhaustion reported by
// the upstream is kept until Reset. Leases from a previous day are ignored.
func (m *Manager) Release(lease Lease) {
	if lease.Units <= 0 {
		return
	}

	m.mu.Lock()
	c, ok := m.byRaw[lease.Credential]
	if !ok || lease.day != m.today() {
		m.mu.Unlock()
		return
	}
	used := c.usage[lease.day] - lease.Units
	if used < 0 {
		used = 0
	}
	c.usage[lease.day] = used
	restored := c.exhausted && c.reason == ReasonCeiling && used < m.limit
	if restored {
		c.exhausted = false
		c.reason = ""
	}
	m.publishLocked()
	m.mu.Unlock()

	if restored {
		m.logger.Info().Str("credential", c.masked).Int("usage", used).Msg("Credential back under daily limit after refund")
	}
	m.persist(lease.day, c)
}

// RecordUsage adds units to cred's counter for today, exhausting it once the
// counter reaches the daily limit.
func (m *Manager) RecordUsage(cred string, units int) error {
	if units <= 0 {
		return nil
	}

	m.mu.Lock()
	c, ok := m.byRaw[cred]
	if !ok {
		m.mu.Unlock()
		return ErrUnknownCredential
	}
	day := m.today()
	used, crossed := m.addUsageLocked(c, day, units)
	m.publishLocked()
	m.mu.Unlock()

	if crossed {
		m.logger.Warn().Str("credential", c.masked).Int("usage", used).Msg("Credential reached daily limit")
	}
	m.persist(day, c)
	return nil
}

// MarkExhausted flags cred after an upstream quota failure, regardless of
// its recorded usage.
func (m *Manager) MarkExhausted(cred string) error {
	m.mu.Lock()
	c, ok := m.byRaw[cred]
	if !ok {
		m.mu.Unlock()
		return ErrUnknownCredential
	}
	wasExhausted := c.exhausted
	c.exhausted = true
	c.reason = ReasonUpstream
	m.publishLocked()
	m.mu.Unlock()

	if !wasExhausted {
		metrics.QuotaExhaustions.WithLabelValues(ReasonUpstream).Inc()
		m.logger.Warn().Str("credential", c.masked).Msg("Credential rejected by upstream quota")
	}
	return nil
}

// Advance moves the cursor to the next credential in rotation order.
func (m *Manager) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.creds) > 0 {
		m.cursor = (m.cursor + 1) % len(m.creds)
	}
}

// Status reports every credential in rotation order. It has no side effects.
func (m *Manager) Status() []CredentialStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := m.today()
	out := make([]CredentialStatus, len(m.creds))
	for i, c := range m.creds {
		used := c.used(day)
		out[i] = CredentialStatus{
			Credential: c.masked,
			Usage:      used,
			Limit:      m.limit,
			Exhausted:  c.exhausted,
			Remaining:  max(0, m.limit-used),
		}
	}
	return out
}

// HasAvailable reports whether Next would succeed, without moving the cursor.
func (m *Manager) HasAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.availableLocked(m.today()) > 0
}

// Reset clears every exhaustion flag and rewinds the cursor. Usage recorded
// today is kept. It returns the number of flags cleared.
func (m *Manager) Reset() int {
	m.mu.Lock()
	cleared := 0
	for _, c := range m.creds {
		if c.exhausted {
			c.exhausted = false
			cleared++
		}
		c.reason = ""
	}
	m.cursor = 0
	m.publishLocked()
	m.mu.Unlock()

	m.logger.Info().Int("cleared", cleared).Msg("Daily quota reset")
	return cleared
}

// Len returns the number of registered credentials.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.creds)
}

// Limit returns the daily unit ceiling.
func (m *Manager) Limit() int {
	return m.limit
}

// Location returns the time zone that bounds a quota day.
func (m *Manager) Location() *time.Location {
	return m.loc
}

// Restore loads today's usage from the attached store. Counters already at
// the ceiling exhaust their credential.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	store := m.store
	day := m.today()
	m.mu.Unlock()
	if store == nil {
		return nil
	}

	usage, err := store.LoadUsage(ctx, day)
	if err != nil {
		return fmt.Errorf("load usage for %s: %w", day, err)
	}

	m.mu.Lock()
	restored := 0
	for _, c := range m.creds {
		units, ok := usage[c.id]
		if !ok {
			continue
		}
		c.usage[day] = units
		if units >= m.limit && !c.exhausted {
			c.exhausted = true
			c.reason = ReasonCeiling
		}
		restored++
	}
	m.publishLocked()
	m.mu.Unlock()

	m.logger.Info().Str("day", day).Int("restored", restored).Msg("Credential usage restored")
	return nil
}

func (m *Manager) today() string {
	return m.now().In(m.loc).Format(dayLayout)
}

func (m *Manager) eligibleLocked(c *credential, day string) bool {
	return !c.exhausted && c.used(day) < m.limit
}

func (m *Manager) selectLocked(day string) *credential {
	n := len(m.creds)
	for i := 0; i < n; i++ {
		idx := (m.cursor + i) % n
		if c := m.creds[idx]; m.eligibleLocked(c, day) {
			m.cursor = idx
			return c
		}
	}
	return nil
}

func (m *Manager) availableLocked(day string) int {
	n := 0
	for _, c := range m.creds {
		if m.eligibleLocked(c, day) {
			n++
		}
	}
	return n
}

// addUsageLocked adds units for day, dropping counters of earlier days. It
// reports the new total and whether this call exhausted the credential.
func (m *Manager) addUsageLocked(c *credential, day string, units int) (int, bool) {
	for d := range c.usage {
		if d != day {
			delete(c.usage, d)
		}
	}
	c.usage[day] += units
	used := c.usage[day]
	if used >= m.limit && !c.exhausted {
		c.exhausted = true
		c.reason = ReasonCeiling
		metrics.QuotaExhaustions.WithLabelValues(ReasonCeiling).Inc()
		return used, true
	}
	return used, false
}

func (m *Manager) publishLocked() {
	day := m.today()
	for _, c := range m.creds {
		metrics.QuotaUnitsUsed.WithLabelValues(c.masked).Set(float64(c.used(day)))
	}
	metrics.QuotaAvailableCredentials.Set(float64(m.availableLocked(day)))
}

// persist writes c's counter for day. The counter is read after persistMu is
// held, so the last write to reach the store is never older than the
// in-memory state that triggered it.
func (m *Manager) persist(day string, c *credential) {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	store := m.store
	units, ok := c.usage[day]
	id := c.id
	m.mu.Unlock()
	if store == nil || !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := store.SaveUsage(ctx, day, id, units); err != nil {
		m.logger.Warn().Err(err).Str("day", day).Msg("Failed to persist credential usage")
	}
}

// Mask hides all but a short prefix of raw.
func Mask(raw string) string {
	runes := []rune(raw)
	if len(runes) > 20 {
		return string(runes[:20]) + "..."
	}
	if len(runes) > 4 {
		runes = runes[:4]
	}
	return string(runes) + "..."
}

// CredentialID derives a stable, non-reversible identifier for raw, used as
// the storage key.
func CredentialID(raw string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(raw))
}
