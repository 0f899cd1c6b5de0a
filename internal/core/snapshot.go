package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/latentspeed/execengine/internal/tracker"
)

// SnapshotWriter periodically dumps the engine's in-flight order set and
// counters to disk for operator diagnostics. It is write-only: nothing in
// this package ever reads a snapshot back, since cross-restart persistence
// of order state is explicitly out of scope — on restart, RehydrateFromVenue
// is the only source of truth for what's still live at the venue. A
// snapshot is a point-in-time debugging aid, not a recovery log.
type SnapshotWriter struct {
	dir string
}

// OpenSnapshotWriter creates dir if needed and returns a writer rooted there.
func OpenSnapshotWriter(dir string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &SnapshotWriter{dir: dir}, nil
}

type snapshotOrder struct {
	ClID            string `json:"cl_id"`
	ExchangeOrderID string `json:"exchange_order_id"`
	Venue           string `json:"venue"`
	LastStatus      string `json:"last_status"`
	External        bool   `json:"external"`
}

type snapshotDoc struct {
	TakenAtUnixNS int64           `json:"taken_at_unix_ns"`
	Stats         Snapshot        `json:"stats"`
	PendingOrders []snapshotOrder `json:"pending_orders"`
}

// Write atomically replaces snapshot.json under the writer's directory with
// the engine's current stats and Pending contents, mirroring the teacher's
// write-to-.tmp-then-rename pattern so a crash mid-write never leaves a
// truncated file for an operator to trip over.
func (w *SnapshotWriter) Write(stats Snapshot, pending []*tracker.InFlightOrder) error {
	doc := snapshotDoc{
		TakenAtUnixNS: time.Now().UnixNano(),
		Stats:         stats,
		PendingOrders: make([]snapshotOrder, 0, len(pending)),
	}
	for _, in := range pending {
		venue := ""
		if in.Order != nil {
			venue = in.Order.Venue
		}
		doc.PendingOrders = append(doc.PendingOrders, snapshotOrder{
			ClID:            in.Order.ClID,
			ExchangeOrderID: in.ExchangeOrderID,
			Venue:           venue,
			LastStatus:      in.LastStatus,
			External:        in.External,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(w.dir, "snapshot.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp, path)
}
