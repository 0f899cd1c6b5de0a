package core

import "sync/atomic"

// Stats holds the counters the Stats thread logs every 10s (§4.H). All
// fields are updated with atomic operations from the Receiver and Publisher
// threads so the Stats thread never needs to take a lock on the hot path.
type Stats struct {
	ordersTotal      atomic.Int64
	latencyMinNS     atomic.Int64
	latencyMaxNS     atomic.Int64
	latencySumNS     atomic.Int64
	latencyCount     atomic.Int64
	queueHighWater   atomic.Int64
	queueFullCount   atomic.Int64
	poolPeakOccupied atomic.Int64
}

func newStats() *Stats {
	s := &Stats{}
	s.latencyMinNS.Store(-1)
	return s
}

// recordOrder increments the total order counter and folds latencyNS into
// the running min/max/sum/count.
func (s *Stats) recordOrder(latencyNS int64) {
	s.ordersTotal.Add(1)
	s.latencySumNS.Add(latencyNS)
	s.latencyCount.Add(1)

	for {
		cur := s.latencyMinNS.Load()
		if cur != -1 && cur <= latencyNS {
			break
		}
		if s.latencyMinNS.CompareAndSwap(cur, latencyNS) {
			break
		}
	}
	for {
		cur := s.latencyMaxNS.Load()
		if cur >= latencyNS {
			break
		}
		if s.latencyMaxNS.CompareAndSwap(cur, latencyNS) {
			break
		}
	}
}

func (s *Stats) recordQueueDepth(depth int) {
	for {
		cur := s.queueHighWater.Load()
		if int64(depth) <= cur {
			break
		}
		if s.queueHighWater.CompareAndSwap(cur, int64(depth)) {
			break
		}
	}
}

func (s *Stats) recordQueueFull() {
	s.queueFullCount.Add(1)
}

func (s *Stats) recordPoolOccupied(occupied int) {
	for {
		cur := s.poolPeakOccupied.Load()
		if int64(occupied) <= cur {
			break
		}
		if s.poolPeakOccupied.CompareAndSwap(cur, int64(occupied)) {
			break
		}
	}
}

// Snapshot is the immutable view of Stats exposed for logging and testing
// (§ SPEC_FULL.md, "Stats.Snapshot() for testability").
type Snapshot struct {
	OrdersTotal      int64
	LatencyMinNS     int64
	LatencyMaxNS     int64
	LatencyAvgNS     int64
	QueueHighWater   int64
	QueueFullCount   int64
	PoolPeakOccupied int64
}

// Snapshot returns the current counters. LatencyMinNS is 0 if no orders
// have been recorded yet.
func (s *Stats) Snapshot() Snapshot {
	count := s.latencyCount.Load()
	var avg int64
	if count > 0 {
		avg = s.latencySumNS.Load() / count
	}
	min := s.latencyMinNS.Load()
	if min == -1 {
		min = 0
	}
	return Snapshot{
		OrdersTotal:      s.ordersTotal.Load(),
		LatencyMinNS:     min,
		LatencyMaxNS:     s.latencyMaxNS.Load(),
		LatencyAvgNS:     avg,
		QueueHighWater:   s.queueHighWater.Load(),
		QueueFullCount:   s.queueFullCount.Load(),
		PoolPeakOccupied: s.poolPeakOccupied.Load(),
	}
}
