//go:build linux

package clock

import (
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinCurrentThread restricts the calling OS thread to core. The caller must
// have already called runtime.LockOSThread so the goroutine stays bound to
// the thread being pinned.
func PinCurrentThread(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity core %d: %w", core, err)
	}
	return nil
}

// EnableRealtimeScheduling switches the calling thread to SCHED_FIFO at
// priority. Per §4.B, failure (typically EPERM without CAP_SYS_NICE) is not
// fatal: the caller logs a warning and continues under the default
// scheduling policy.
func EnableRealtimeScheduling(logger *slog.Logger, priority int) {
	param := &unix.SchedParam{Priority: int32(priority)}
	if err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, param); err != nil {
		logger.Warn("real-time scheduling unavailable, continuing with default policy",
			"error", err, "requested_priority", priority)
	}
}

// LockAllMemory locks all current and future pages of the process into RAM,
// avoiding page faults on the hot path. Failure is logged and non-fatal for
// the same reason as EnableRealtimeScheduling.
func LockAllMemory(logger *slog.Logger) {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		logger.Warn("mlockall unavailable, pages may fault under load", "error", err)
	}
}

// PinReceiverAndPublisher locks the calling goroutine to its OS thread,
// pins that thread to core, and raises it to real-time priority. It is
// meant to be the first call a Receiver or Publisher thread function makes.
func PinReceiverAndPublisher(logger *slog.Logger, core int, priority int) {
	runtime.LockOSThread()
	if err := PinCurrentThread(core); err != nil {
		logger.Warn("core pinning unavailable, continuing unpinned", "error", err, "core", core)
	}
	EnableRealtimeScheduling(logger, priority)
}
