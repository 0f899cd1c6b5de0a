package container

import "testing"

func TestFlatMapSetGet(t *testing.T) {
	t.Parallel()
	m := NewFlatMap[int](8)
	k1 := NewIDString("order-1")
	k2 := NewIDString("order-2")

	if !m.Set(k1, 100) {
		t.Fatal("Set(k1) failed")
	}
	if !m.Set(k2, 200) {
		t.Fatal("Set(k2) failed")
	}

	v, ok := m.Get(k1)
	if !ok || v != 100 {
		t.Errorf("Get(k1) = (%d, %v), want (100, true)", v, ok)
	}
	v, ok = m.Get(k2)
	if !ok || v != 200 {
		t.Errorf("Get(k2) = (%d, %v), want (200, true)", v, ok)
	}
}

func TestFlatMapGetMissing(t *testing.T) {
	t.Parallel()
	m := NewFlatMap[int](8)
	if _, ok := m.Get(NewIDString("nope")); ok {
		t.Error("Get on missing key should report ok=false")
	}
}

func TestFlatMapUpdateExisting(t *testing.T) {
	t.Parallel()
	m := NewFlatMap[int](8)
	k := NewIDString("order-1")
	m.Set(k, 1)
	m.Set(k, 2)
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after updating same key", m.Len())
	}
	v, _ := m.Get(k)
	if v != 2 {
		t.Errorf("Get(k) = %d, want 2", v)
	}
}

func TestFlatMapDeleteThenReinsert(t *testing.T) {
	t.Parallel()
	m := NewFlatMap[int](8)
	k := NewIDString("order-1")
	m.Set(k, 1)
	if !m.Delete(k) {
		t.Fatal("Delete should succeed for present key")
	}
	if _, ok := m.Get(k); ok {
		t.Error("Get should fail after Delete")
	}
	if m.Delete(k) {
		t.Error("second Delete should report false")
	}
	if !m.Set(k, 9) {
		t.Fatal("Set should succeed for a previously deleted key")
	}
	v, ok := m.Get(k)
	if !ok || v != 9 {
		t.Errorf("Get(k) after reinsert = (%d, %v), want (9, true)", v, ok)
	}
}

func TestFlatMapRejectsOnFull(t *testing.T) {
	t.Parallel()
	m := NewFlatMap[int](2)
	for i := 0; i < m.Capacity(); i++ {
		key := NewIDString(string(rune('a' + i)))
		if !m.Set(key, i) {
			t.Fatalf("Set(%d) unexpectedly failed before capacity reached", i)
		}
	}
	overflowKey := NewIDString("overflow")
	if m.Set(overflowKey, 999) {
		t.Error("Set should fail once the map is at capacity")
	}
}

func TestFlatMapRange(t *testing.T) {
	t.Parallel()
	m := NewFlatMap[int](8)
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		m.Set(NewIDString(k), v)
	}
	got := map[string]int{}
	m.Range(func(key IDString, val int) bool {
		got[key.String()] = val
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Range visited %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Range entry %q = %d, want %d", k, got[k], v)
		}
	}
}
