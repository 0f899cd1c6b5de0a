// Package health watches per-venue error rates and trips a cooldown when a
// venue looks unhealthy, the same rolling-window-plus-cooldown shape the
// teacher uses for its portfolio kill switch, repointed at adapter error
// reports instead of position PnL.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/latentspeed/execengine/internal/normalize"
)

// Outcome is one adapter error reported to the Manager; cmd/execengine
// reports one from the adapter's error callback.
type Outcome struct {
	Venue     string
	Reason    normalize.Reason
	Timestamp time.Time
}

// Config tunes the rolling window and trip thresholds.
type Config struct {
	Window         time.Duration
	TripThreshold  int
	CooldownPeriod time.Duration
}

func (c Config) withDefaults() Config {
	if c.Window == 0 {
		c.Window = 30 * time.Second
	}
	if c.TripThreshold == 0 {
		c.TripThreshold = 10
	}
	if c.CooldownPeriod == 0 {
		c.CooldownPeriod = 15 * time.Second
	}
	return c
}

type venueState struct {
	events        []time.Time
	degraded      bool
	degradedUntil time.Time
}

// Manager aggregates per-venue Outcome reports and exposes a Degraded query.
// It never produces a risk_blocked report itself — that reason code stays
// reserved, per the error taxonomy. Nothing in this module consults Degraded
// before an adapter call, so a tripped venue only changes logging and the
// Degraded result; every call still reaches the adapter.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	venues map[string]*venueState

	reportCh chan Outcome
}

// NewManager creates a watchdog. Call Run to start the aggregation loop.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "health"),
		venues:   make(map[string]*venueState),
		reportCh: make(chan Outcome, 256),
	}
}

// Run processes Outcome reports until ctx is canceled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case o := <-m.reportCh:
			m.process(o)
		case <-ticker.C:
			m.sweep()
		}
	}
}

// Report submits a call outcome (non-blocking).
func (m *Manager) Report(o Outcome) {
	select {
	case m.reportCh <- o:
	default:
		m.logger.Warn("health report channel full, dropping report", "venue", o.Venue)
	}
}

func (m *Manager) process(o Outcome) {
	if o.Reason != normalize.ReasonNetworkError && o.Reason != normalize.ReasonRateLimited {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.venues[o.Venue]
	if !ok {
		st = &venueState{}
		m.venues[o.Venue] = st
	}
	st.events = append(st.events, o.Timestamp)
	st.events = pruneBefore(st.events, o.Timestamp.Add(-m.cfg.Window))

	if !st.degraded && len(st.events) >= m.cfg.TripThreshold {
		st.degraded = true
		st.degradedUntil = o.Timestamp.Add(m.cfg.CooldownPeriod)
		m.logger.Warn("venue marked degraded",
			"venue", o.Venue, "events", len(st.events), "window", m.cfg.Window,
			"cooldown", m.cfg.CooldownPeriod)
	}
}

func (m *Manager) sweep() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for venue, st := range m.venues {
		st.events = pruneBefore(st.events, now.Add(-m.cfg.Window))
		if st.degraded && now.After(st.degradedUntil) {
			st.degraded = false
			m.logger.Info("venue degraded cooldown expired", "venue", venue)
		}
	}
}

func pruneBefore(events []time.Time, cutoff time.Time) []time.Time {
	out := events[:0]
	for _, t := range events {
		if t.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// Degraded reports whether venue is currently in a tripped cooldown.
func (m *Manager) Degraded(venue string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.venues[venue]
	if !ok {
		return false
	}
	return st.degraded && time.Now().Before(st.degradedUntil)
}
