package hyperliquid

import "testing"

func TestFormatPriceRespectsSzDecimalsBudget(t *testing.T) {
	t.Parallel()
	tests := []struct {
		price      string
		szDecimals int
		want       string
	}{
		{"27123.456789", 0, "27123.456789"},
		{"27123.456789", 2, "27123.4568"},
		{"1.23456789", 5, "1.2"},
	}
	for _, tt := range tests {
		if got := formatPrice(tt.price, tt.szDecimals); got != tt.want {
			t.Errorf("formatPrice(%q, %d) = %q, want %q", tt.price, tt.szDecimals, got, tt.want)
		}
	}
}

func TestRoundStringFallsBackOnUnparsable(t *testing.T) {
	t.Parallel()
	if got := roundString("not-a-number", 2); got != "not-a-number" {
		t.Errorf("roundString on bad input = %q, want passthrough", got)
	}
}

func TestTrimTrailingZeros(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want string }{
		{"1.500", "1.5"},
		{"1.000", "1"},
		{"100", "100"},
		{"0.000", "0"},
	}
	for _, tt := range tests {
		if got := trimTrailingZeros(tt.in); got != tt.want {
			t.Errorf("trimTrailingZeros(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
