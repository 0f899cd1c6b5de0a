package container

import "testing"

func TestNewIDStringRoundTrip(t *testing.T) {
	t.Parallel()
	cases := []string{"", "BTC-PERP", "a", "0123456789012345678901234567890123456789012345678901234567890123"}
	for _, s := range cases {
		id := NewIDString(s)
		if len(s) <= IDStringCap {
			if id.Overflowed {
				t.Errorf("NewIDString(%q) overflowed unexpectedly", s)
			}
			if id.String() != s {
				t.Errorf("NewIDString(%q).String() = %q", s, id.String())
			}
		} else {
			if !id.Overflowed {
				t.Errorf("NewIDString(%q) should have overflowed", s)
			}
			if id.Len() != IDStringCap {
				t.Errorf("NewIDString(%q).Len() = %d, want %d", s, id.Len(), IDStringCap)
			}
		}
	}
}

func TestIDStringEqual(t *testing.T) {
	t.Parallel()
	a := NewIDString("client-order-1")
	b := NewIDString("client-order-1")
	c := NewIDString("client-order-2")

	if !a.Equal(b) {
		t.Error("identical strings should be Equal")
	}
	if a.Equal(c) {
		t.Error("different strings should not be Equal")
	}
}

func TestIDStringHashStable(t *testing.T) {
	t.Parallel()
	a := NewIDString("ETH-PERP")
	b := NewIDString("ETH-PERP")
	if a.Hash() != b.Hash() {
		t.Error("identical strings must hash identically")
	}
}

func TestIDStringIsZero(t *testing.T) {
	t.Parallel()
	var zero IDString
	if !zero.IsZero() {
		t.Error("zero-value IDString should report IsZero")
	}
	if NewIDString("x").IsZero() {
		t.Error("non-empty IDString should not report IsZero")
	}
}
