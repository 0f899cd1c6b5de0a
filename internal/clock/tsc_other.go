//go:build !amd64

package clock

// readTSC reports no cycle counter on architectures other than amd64; NowNS
// falls back to time.Now's monotonic reading.
func readTSC() (uint64, bool) {
	return 0, false
}
