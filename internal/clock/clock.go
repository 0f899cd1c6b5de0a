// Package clock provides the execution engine's timing primitives: a
// monotonic nanosecond clock, optional TSC calibration, and (on Linux) core
// pinning, real-time scheduling, and memory locking for the Receiver and
// Publisher threads.
package clock

import (
	"math/bits"
	"sync/atomic"
	"time"
)

// processStart anchors the fallback reading: monotonicNS adds the time
// elapsed since it, which time.Since measures on the monotonic clock.
var processStart = time.Now()

func monotonicNS() int64 {
	return processStart.UnixNano() + int64(time.Since(processStart))
}

// Clock produces monotonic nanosecond timestamps. The zero value is usable
// and falls back to time.Now's monotonic reading; Calibrate upgrades it to
// a TSC-based reading where the platform supports it.
type Clock struct {
	calibrated atomic.Bool
	scaleNumer uint64
	scaleDenom uint64
	tscOffset  uint64
	nsOffset   int64
}

// New returns a Clock using time.Now's monotonic component until Calibrate
// succeeds.
func New() *Clock {
	return &Clock{}
}

// NowNS returns nanoseconds since an implementation-defined epoch. Only
// monotonicity across calls within one process run is guaranteed — the
// value must not be interpreted as wall-clock time.
func (c *Clock) NowNS() int64 {
	if c.calibrated.Load() {
		if cycles, ok := readTSC(); ok {
			delta := cycles - c.tscOffset
			// 128-bit product so the scaling does not wrap as delta grows.
			hi, lo := bits.Mul64(delta, c.scaleNumer)
			if hi < c.scaleDenom {
				q, _ := bits.Div64(hi, lo, c.scaleDenom)
				return int64(q) + c.nsOffset
			}
		}
	}
	return monotonicNS()
}

// Calibrate samples the TSC against the fallback monotonic reading over
// window and, if the platform exposes a usable cycle counter, switches NowNS
// to the TSC-derived path. Calibrate is a no-op (NowNS keeps using the
// fallback) on platforms without a cycle counter; a window shorter than
// 100ms is raised to 100ms. Per §4.B the sampling window should be at least
// 100ms.
func (c *Clock) Calibrate(window time.Duration) {
	if window < 100*time.Millisecond {
		window = 100 * time.Millisecond
	}
	startCycles, ok := readTSC()
	if !ok {
		return
	}
	startNS := monotonicNS()
	time.Sleep(window)
	endCycles, ok := readTSC()
	if !ok {
		return
	}
	endNS := monotonicNS()

	cycleDelta := endCycles - startCycles
	nsDelta := endNS - startNS
	if cycleDelta == 0 || nsDelta <= 0 {
		return
	}

	c.tscOffset = startCycles
	c.nsOffset = startNS
	c.scaleNumer = uint64(nsDelta)
	c.scaleDenom = cycleDelta
	c.calibrated.Store(true)
}

// Calibrated reports whether a TSC-based scale is currently in effect.
func (c *Clock) Calibrated() bool {
	return c.calibrated.Load()
}
