package container

import "testing"

func TestQueueCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	t.Parallel()
	q := NewQueue[int](5)
	if q.Capacity() != 8 {
		t.Errorf("Capacity() = %d, want 8", q.Capacity())
	}
}

func TestQueuePushPopOrder(t *testing.T) {
	t.Parallel()
	q := NewQueue[int](4)
	for i := 1; i <= 4; i++ {
		if !q.TryPush(i) {
			t.Fatalf("TryPush(%d) failed", i)
		}
	}
	if q.TryPush(5) {
		t.Fatal("TryPush should fail when queue is full")
	}
	for i := 1; i <= 4; i++ {
		v, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop %d failed", i)
		}
		if v != i {
			t.Errorf("TryPop() = %d, want %d", v, i)
		}
	}
	if _, ok := q.TryPop(); ok {
		t.Fatal("TryPop should fail on empty queue")
	}
}

func TestQueueLen(t *testing.T) {
	t.Parallel()
	q := NewQueue[int](4)
	q.TryPush(1)
	q.TryPush(2)
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
	q.TryPop()
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}
}

func TestQueueWrapsAroundAfterDrain(t *testing.T) {
	t.Parallel()
	q := NewQueue[int](2)
	for round := 0; round < 3; round++ {
		if !q.TryPush(round) {
			t.Fatalf("round %d: TryPush failed", round)
		}
		v, ok := q.TryPop()
		if !ok || v != round {
			t.Fatalf("round %d: TryPop = (%d, %v), want (%d, true)", round, v, ok, round)
		}
	}
}
