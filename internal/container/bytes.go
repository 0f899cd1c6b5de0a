// Package container provides fixed-capacity, allocation-free building blocks
// for the execution engine's hot path: an inline string, a pre-allocated
// object pool, a single-producer/single-consumer ring buffer, and a
// fixed-capacity flat map.
//
// Every container in this package has a policy of "fail on full, never
// crash, never grow" — exhaustion is reported to the caller as a bool or a
// zero value and counted, the same way internal/exchange/ws.go in the
// teacher bot drops events on a full channel rather than blocking.
package container

import "fmt"

// IDStringCap is the fixed capacity of IDString, the inline string type used
// across the engine for client order IDs, symbols, venue keys, and reason
// codes. 64 bytes covers the spec's client_order_id bound (<=64 chars) with
// room to spare for symbols and reason text.
const IDStringCap = 64

// IDString is a stack-allocated string of at most IDStringCap bytes.
// Equality, hashing, and viewing never allocate on their own (String does,
// since Go strings are immutable). Overflow truncates and sets Overflowed,
// matching §4.A: "truncation is acceptable for symbols, ids, and reason
// codes whose bounds are known."
type IDString struct {
	buf        [IDStringCap]byte
	n          uint8
	Overflowed bool
}

// NewIDString builds an IDString from s, truncating and flagging overflow
// if s is longer than IDStringCap.
func NewIDString(s string) IDString {
	var id IDString
	if len(s) > IDStringCap {
		id.Overflowed = true
		s = s[:IDStringCap]
	}
	copy(id.buf[:], s)
	id.n = uint8(len(s))
	return id
}

// String returns the stored bytes as a Go string. Callers on the hot path
// should prefer Equal for comparisons instead of converting both sides to
// string.
func (id IDString) String() string {
	return string(id.buf[:id.n])
}

// Len returns the stored length (post-truncation).
func (id IDString) Len() int { return int(id.n) }

// Equal compares two IDStrings without allocating.
func (id IDString) Equal(other IDString) bool {
	if id.n != other.n {
		return false
	}
	for i := 0; i < int(id.n); i++ {
		if id.buf[i] != other.buf[i] {
			return false
		}
	}
	return true
}

// Hash computes an FNV-1a hash over the stored bytes for use as a FlatMap
// bucket index. FNV-1a is used rather than importing a hashing library
// because the teacher's dependency graph has no generic hash library and
// the standard algorithm is a few lines of arithmetic.
func (id IDString) Hash() uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < int(id.n); i++ {
		h ^= uint64(id.buf[i])
		h *= prime64
	}
	return h
}

// IsZero reports whether this IDString was never assigned (the empty key
// sentinel FlatMap uses to detect unused buckets).
func (id IDString) IsZero() bool { return id.n == 0 && !id.Overflowed }

func (id IDString) GoString() string {
	return fmt.Sprintf("IDString(%q)", id.String())
}
