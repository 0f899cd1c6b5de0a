package container

import "testing"

func TestPoolGetPutReusesSlots(t *testing.T) {
	t.Parallel()
	p := NewPool[int](2)

	h1, v1, ok := p.Get()
	if !ok {
		t.Fatal("expected Get to succeed")
	}
	*v1 = 42

	h2, _, ok := p.Get()
	if !ok {
		t.Fatal("expected second Get to succeed")
	}

	if _, _, ok := p.Get(); ok {
		t.Fatal("expected pool exhausted on third Get")
	}

	p.Put(h1)
	h3, v3, ok := p.Get()
	if !ok {
		t.Fatal("expected Get to succeed after Put")
	}
	if *v3 != 0 {
		t.Errorf("reused slot should be zeroed, got %d", *v3)
	}
	_ = h2
	_ = h3
}

func TestPoolPeakUsed(t *testing.T) {
	t.Parallel()
	p := NewPool[int](4)
	var handles []int32
	for i := 0; i < 3; i++ {
		h, _, ok := p.Get()
		if !ok {
			t.Fatalf("Get %d failed", i)
		}
		handles = append(handles, h)
	}
	if p.PeakUsed() != 3 {
		t.Errorf("PeakUsed() = %d, want 3", p.PeakUsed())
	}
	for _, h := range handles {
		p.Put(h)
	}
	if p.InUse() != 0 {
		t.Errorf("InUse() = %d, want 0", p.InUse())
	}
	if p.PeakUsed() != 3 {
		t.Errorf("PeakUsed() should remain at high-water mark, got %d", p.PeakUsed())
	}
}

func TestPoolCapacity(t *testing.T) {
	t.Parallel()
	p := NewPool[string](16)
	if p.Capacity() != 16 {
		t.Errorf("Capacity() = %d, want 16", p.Capacity())
	}
}
