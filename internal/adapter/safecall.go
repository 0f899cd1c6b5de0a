package adapter

import "log/slog"

// SafeOrderUpdate invokes fn with update, recovering and logging instead of
// propagating a panic. Per §4.E's contract note, "exceptions in callbacks
// are caught... logged, and dropped" so a misbehaving callback never kills
// the adapter-owned goroutine that triggered it.
func SafeOrderUpdate(logger *slog.Logger, fn OrderUpdateFunc, update OrderUpdate) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("order update callback panicked", "recovered", r, "cl_id", update.ClID)
		}
	}()
	fn(update)
}

// SafeFill invokes fn with fill, recovering and logging instead of
// propagating a panic.
func SafeFill(logger *slog.Logger, fn FillFunc, fill FillData) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("fill callback panicked", "recovered", r, "cl_id", fill.ClID)
		}
	}()
	fn(fill)
}

// SafeError invokes fn with msg, recovering and logging instead of
// propagating a panic.
func SafeError(logger *slog.Logger, fn ErrorFunc, msg string) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("error callback panicked", "recovered", r)
		}
	}()
	fn(msg)
}
