package health

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/latentspeed/execengine/internal/normalize"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTripsAfterThresholdWithinWindow(t *testing.T) {
	t.Parallel()
	m := NewManager(Config{Window: time.Minute, TripThreshold: 3, CooldownPeriod: time.Minute}, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	now := time.Now()
	for i := 0; i < 3; i++ {
		m.Report(Outcome{Venue: "hyperliquid", Reason: normalize.ReasonNetworkError, Timestamp: now})
	}

	deadline := time.Now().Add(time.Second)
	for !m.Degraded("hyperliquid") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !m.Degraded("hyperliquid") {
		t.Fatal("expected venue to be degraded after threshold reports")
	}
}

func TestIgnoresUnrelatedReasons(t *testing.T) {
	t.Parallel()
	m := NewManager(Config{Window: time.Minute, TripThreshold: 1, CooldownPeriod: time.Minute}, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.Report(Outcome{Venue: "hyperliquid", Reason: normalize.ReasonInsufficientBalance, Timestamp: time.Now()})

	time.Sleep(50 * time.Millisecond)
	if m.Degraded("hyperliquid") {
		t.Fatal("insufficient_balance reports should never trip the watchdog")
	}
}

func TestUnknownVenueNotDegraded(t *testing.T) {
	t.Parallel()
	m := NewManager(Config{}, testLogger())
	if m.Degraded("nobody") {
		t.Fatal("unknown venue should never be degraded")
	}
}

func TestPruneBeforeDropsOldEvents(t *testing.T) {
	t.Parallel()
	now := time.Now()
	events := []time.Time{now.Add(-10 * time.Minute), now.Add(-1 * time.Second), now}
	pruned := pruneBefore(events, now.Add(-time.Minute))
	if len(pruned) != 2 {
		t.Errorf("len(pruned) = %d, want 2", len(pruned))
	}
}
