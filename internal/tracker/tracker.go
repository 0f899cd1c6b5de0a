// Package tracker implements the order lifecycle tracker (§4.G): the
// Pending and Processed flat maps, their dedupe policy, and rehydration of
// orders that exist at the venue but not yet in engine memory.
package tracker

import (
	"sync"

	"github.com/latentspeed/execengine/internal/container"
	"github.com/latentspeed/execengine/internal/execdto"
)

// InFlightOrder is the engine-internal record for an order whose venue
// state is not yet terminal (§5, "InFlightOrder"). It retains the original
// ExecutionOrder so a later replace/cancel can be validated against it.
type InFlightOrder struct {
	Order           *execdto.ExecutionOrder
	ExchangeOrderID string
	LastStatus      string
	External        bool

	// PoolHandle is the order pool slot backing this entry, or -1 if it
	// was synthesized by rehydration rather than allocated from the pool
	// (External entries are never pool-backed). internal/core uses this
	// to release the slot when the entry reaches a terminal status;
	// Tracker itself never interprets the value.
	PoolHandle int32
}

// PlaceDecision is the outcome of checking whether a place should proceed.
type PlaceDecision int

const (
	// PlaceProceed means cl_id is fresh (or was processed but is no longer
	// pending): the adapter should be called.
	PlaceProceed PlaceDecision = iota
	// PlaceDuplicatePending means cl_id is currently live in Pending; the
	// place is ignored with a logged warning, no adapter call.
	PlaceDuplicatePending
)

// Tracker holds the Pending and Processed maps described in §4.G. Per §5,
// "Pending map and Processed map are mutated by Receiver and by
// callback-dispatch; both paths take a short mutex (per-map)" — pendingMu
// and processedMu are exactly that: held only for the duration of a single
// map operation, never across a callback invocation or adapter call.
type Tracker struct {
	pendingMu sync.Mutex
	pending   *container.FlatMap[*InFlightOrder]

	processedMu sync.Mutex
	processed   *container.FlatMap[int64]
}

// New builds a Tracker. pendingCapacity should cover the maximum number of
// simultaneously live orders; processedCapacity should be larger, per §5,
// "sized larger than InFlight to catch retries after terminal removal."
func New(pendingCapacity, processedCapacity int) *Tracker {
	return &Tracker{
		pending:   container.NewFlatMap[*InFlightOrder](pendingCapacity),
		processed: container.NewFlatMap[int64](processedCapacity),
	}
}

// CheckPlace applies the place dedupe policy from §4.G: a cl_id already
// live in Pending is a duplicate; everything else (fresh, or previously
// processed but no longer pending — "a retry after cleanup is legitimate")
// proceeds normally.
func (t *Tracker) CheckPlace(clID string) PlaceDecision {
	key := container.NewIDString(clID)
	t.pendingMu.Lock()
	_, ok := t.pending.Get(key)
	t.pendingMu.Unlock()
	if ok {
		return PlaceDuplicatePending
	}
	return PlaceProceed
}

// RecordPlace inserts inflight into Pending under clID and records
// firstSeenNS in Processed. inflight is expected to be sourced from the
// Receiver's order pool (§4.H step 2); Tracker only holds the pointer, it
// does not own the allocation. RecordPlace returns false if Pending is at
// capacity — the caller must treat that as pool/queue exhaustion and reject
// the place with a counted error rather than calling the adapter. A
// Processed map that is full on insert rejects the new entry instead of
// evicting an older one (see DESIGN.md, Open Questions) — the insert into
// Pending itself still succeeds, since Processed is advisory dedupe
// bookkeeping rather than the lifecycle's source of truth.
func (t *Tracker) RecordPlace(clID string, inflight *InFlightOrder, firstSeenNS int64) bool {
	key := container.NewIDString(clID)

	t.pendingMu.Lock()
	inserted := t.pending.Set(key, inflight)
	t.pendingMu.Unlock()
	if !inserted {
		return false
	}

	t.processedMu.Lock()
	t.processed.Set(key, firstSeenNS)
	t.processedMu.Unlock()
	return true
}

// RehydrateExternal inserts a synthesized InFlightOrder for an order the
// engine did not itself place — either discovered via list_open_orders at
// connect time, or via lazy rehydration when an update arrives for an
// unknown cl_id. The entry is marked External (and carries no tags of its
// own); the core reads that flag to tag the order's fills with
// execution_type=external.
func (t *Tracker) RehydrateExternal(clID string, order *execdto.ExecutionOrder, exchangeOrderID, status string) bool {
	key := container.NewIDString(clID)
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	return t.pending.Set(key, &InFlightOrder{
		Order:           order,
		ExchangeOrderID: exchangeOrderID,
		LastStatus:      status,
		External:        true,
		PoolHandle:      -1,
	})
}

// Get returns the InFlightOrder for clID, if any.
func (t *Tracker) Get(clID string) (*InFlightOrder, bool) {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	return t.pending.Get(container.NewIDString(clID))
}

// UpdateExchangeOrderID records the venue-assigned id once known, without
// disturbing the rest of the InFlightOrder.
func (t *Tracker) UpdateExchangeOrderID(clID, exchangeOrderID string) {
	key := container.NewIDString(clID)
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	if in, ok := t.pending.Get(key); ok {
		in.ExchangeOrderID = exchangeOrderID
	}
}

// UpdateStatus records the last observed status without disturbing the
// rest of the InFlightOrder.
func (t *Tracker) UpdateStatus(clID, status string) {
	key := container.NewIDString(clID)
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	if in, ok := t.pending.Get(key); ok {
		in.LastStatus = status
	}
}

// MarkTerminal removes clID from Pending. Per invariant 5 (§8), after any
// terminal status for a cl_id, no further Pending entry for that id exists.
func (t *Tracker) MarkTerminal(clID string) {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	t.pending.Delete(container.NewIDString(clID))
}

// PendingSnapshot returns a point-in-time copy of every live Pending entry,
// for the diagnostic snapshot writer. The returned slice shares pointers
// with the live entries; the caller must treat them as read-only.
func (t *Tracker) PendingSnapshot() []*InFlightOrder {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	out := make([]*InFlightOrder, 0, t.pending.Len())
	t.pending.Range(func(_ container.IDString, val *InFlightOrder) bool {
		out = append(out, val)
		return true
	})
	return out
}

// PendingLen and ProcessedLen expose current map occupancy for the Stats
// thread.
func (t *Tracker) PendingLen() int {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	return t.pending.Len()
}

func (t *Tracker) ProcessedLen() int {
	t.processedMu.Lock()
	defer t.processedMu.Unlock()
	return t.processed.Len()
}
