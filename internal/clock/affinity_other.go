//go:build !linux

package clock

import "log/slog"

// PinReceiverAndPublisher is a no-op on non-Linux platforms: core pinning,
// real-time scheduling, and memory locking are Linux-only per §4.B.
// Behavior remains correct, only latency is affected.
func PinReceiverAndPublisher(logger *slog.Logger, core int, priority int) {
	logger.Warn("thread pinning and real-time scheduling are linux-only, continuing unpinned",
		"core", core, "priority", priority)
}

// LockAllMemory is a no-op on non-Linux platforms.
func LockAllMemory(logger *slog.Logger) {
	logger.Warn("mlockall is linux-only, continuing without memory locking")
}
