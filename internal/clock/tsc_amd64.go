//go:build amd64

package clock

// rdtsc is implemented in tsc_amd64.s using the RDTSC instruction.
func rdtsc() uint64

// readTSC returns the raw cycle counter on amd64. It is always available on
// this architecture (RDTSC has existed since the Pentium), so ok is always
// true here.
func readTSC() (uint64, bool) {
	return rdtsc(), true
}
