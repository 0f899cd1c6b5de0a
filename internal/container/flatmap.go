package container

// FlatMap is a fixed-capacity open-addressed map keyed by IDString, used for
// the tracker's Pending and Processed sets (§4.G) and the venue router's
// registry (§4.F). It never grows: once Len() reaches Capacity(), Set
// reports ok=false and the caller decides the eviction policy (the tracker's
// Processed set rejects-on-full rather than evicting the oldest entry, see
// DESIGN.md).
//
// Collisions are resolved by linear probing, matching the "flat map,
// open addressing" wording in §4.A. Deletion uses tombstones so probing
// sequences for still-live keys stay intact after a remove.
type FlatMap[V any] struct {
	keys      []IDString
	vals      []V
	used      []bool
	tombstone []bool
	count     int
}

// NewFlatMap builds a FlatMap with room for at least capacity live entries
// (Capacity() reports the exact figure).
// Internally it over-allocates to keep load factor below 0.75 so probe
// chains stay short even near capacity.
func NewFlatMap[V any](capacity int) *FlatMap[V] {
	n := nextPowerOfTwo(capacity*4/3 + 1)
	return &FlatMap[V]{
		keys:      make([]IDString, n),
		vals:      make([]V, n),
		used:      make([]bool, n),
		tombstone: make([]bool, n),
	}
}

func (m *FlatMap[V]) slot(key IDString) int {
	h := key.Hash()
	mask := uint64(len(m.keys) - 1)
	return int(h & mask)
}

// Get looks up key. ok is false if key is absent.
func (m *FlatMap[V]) Get(key IDString) (V, bool) {
	var zero V
	mask := len(m.keys) - 1
	i := m.slot(key)
	for probes := 0; probes <= mask; probes++ {
		idx := (i + probes) & mask
		if !m.used[idx] && !m.tombstone[idx] {
			return zero, false
		}
		if m.used[idx] && m.keys[idx].Equal(key) {
			return m.vals[idx], true
		}
	}
	return zero, false
}

// Set inserts or updates key's value. ok is false if the map is at capacity
// and key is not already present — the caller must not assume the value was
// stored.
func (m *FlatMap[V]) Set(key IDString, val V) bool {
	mask := len(m.keys) - 1
	i := m.slot(key)
	firstTombstone := -1
	for probes := 0; probes <= mask; probes++ {
		idx := (i + probes) & mask
		if m.used[idx] {
			if m.keys[idx].Equal(key) {
				m.vals[idx] = val
				return true
			}
			continue
		}
		if m.tombstone[idx] {
			if firstTombstone == -1 {
				firstTombstone = idx
			}
			continue
		}
		// empty, never used: insert here (or at earlier tombstone)
		target := idx
		if firstTombstone != -1 {
			target = firstTombstone
		}
		if !m.hasRoom() {
			return false
		}
		m.keys[target] = key
		m.vals[target] = val
		m.used[target] = true
		m.tombstone[target] = false
		m.count++
		return true
	}
	if firstTombstone != -1 {
		if !m.hasRoom() {
			return false
		}
		m.keys[firstTombstone] = key
		m.vals[firstTombstone] = val
		m.used[firstTombstone] = true
		m.tombstone[firstTombstone] = false
		m.count++
		return true
	}
	return false
}

func (m *FlatMap[V]) hasRoom() bool {
	return m.count < len(m.keys)*3/4
}

// Delete removes key if present, leaving a tombstone so later probes for
// other keys still find them.
func (m *FlatMap[V]) Delete(key IDString) bool {
	mask := len(m.keys) - 1
	i := m.slot(key)
	for probes := 0; probes <= mask; probes++ {
		idx := (i + probes) & mask
		if !m.used[idx] && !m.tombstone[idx] {
			return false
		}
		if m.used[idx] && m.keys[idx].Equal(key) {
			m.used[idx] = false
			m.tombstone[idx] = true
			var zero V
			m.vals[idx] = zero
			m.count--
			return true
		}
	}
	return false
}

// Len returns the number of live entries.
func (m *FlatMap[V]) Len() int {
	return m.count
}

// Capacity returns the number of live entries this map guarantees room for
// before Set can report ok=false.
func (m *FlatMap[V]) Capacity() int {
	return len(m.keys) * 3 / 4
}

// Range calls fn for every live entry. Iteration order is unspecified. fn
// must not call Set or Delete on the map it is ranging over.
func (m *FlatMap[V]) Range(fn func(key IDString, val V) bool) {
	for idx, used := range m.used {
		if !used {
			continue
		}
		if !fn(m.keys[idx], m.vals[idx]) {
			return
		}
	}
}
