package container

import "sync"

// Pool is a fixed-capacity free-list allocator for T. The backing storage is
// allocated once at construction; Get and Put never grow or shrink it. A
// Pool exhausted of free slots returns ok=false from Get rather than
// allocating — the same fail-closed behavior IDString uses on overflow.
//
// Pool is safe for concurrent use: the execution core's receiver goroutine
// allocates orders from it while venue callback goroutines release them, so
// the free list is guarded by a mutex. The hot path only touches this under
// contention with callback goroutines, not with itself, so a mutex is
// adequate without needing a lock-free structure here.
type Pool[T any] struct {
	mu       sync.Mutex
	items    []T
	free     []int32
	inUse    int
	peakUsed int
}

// NewPool allocates a Pool with room for exactly capacity items.
func NewPool[T any](capacity int) *Pool[T] {
	p := &Pool[T]{
		items: make([]T, capacity),
		free:  make([]int32, capacity),
	}
	for i := range p.free {
		p.free[i] = int32(capacity - 1 - i)
	}
	return p
}

// Get returns a pointer to a zeroed-by-reuse slot and its handle, or
// ok=false if the pool is exhausted. The returned pointer is only valid
// until the corresponding Put.
func (p *Pool[T]) Get() (handle int32, item *T, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.free)
	if n == 0 {
		return -1, nil, false
	}
	handle = p.free[n-1]
	p.free = p.free[:n-1]
	p.inUse++
	if p.inUse > p.peakUsed {
		p.peakUsed = p.inUse
	}
	var zero T
	p.items[handle] = zero
	return handle, &p.items[handle], true
}

// Put returns handle to the free list. Putting a handle that was not
// currently checked out corrupts the free list; callers must track
// ownership themselves (the tracker's Pending/Processed maps do this).
func (p *Pool[T]) Put(handle int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, handle)
	p.inUse--
}

// Item returns a pointer to the slot for handle without allocating.
func (p *Pool[T]) Item(handle int32) *T {
	return &p.items[handle]
}

// InUse reports the current number of checked-out slots.
func (p *Pool[T]) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// PeakUsed reports the high-water mark of checked-out slots since
// construction, used by the Stats thread (§4.H).
func (p *Pool[T]) PeakUsed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peakUsed
}

// Capacity returns the total number of slots the pool was built with.
func (p *Pool[T]) Capacity() int {
	return len(p.items)
}
