package normalize

import "testing"

func TestParseSymbolForms(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw       string
		wantBase  string
		wantQuote string
		wantPerp  bool
	}{
		{"BTCUSDT", "BTC", "USDT", false},
		{"btcusdt", "BTC", "USDT", false},
		{"BTC-USDT", "BTC", "USDT", false},
		{"BTC-USD-PERP", "BTC", "USD", true},
		{"btc-usd-perp", "BTC", "USD", true},
		{"BTCUSDPERP", "BTC", "USD", true},
		{"ETH-USDC", "ETH", "USDC", false},
		{"BTC/USDT", "BTC", "USDT", false},
		{"btc/usd-perp", "BTC", "USD", true},
	}
	for _, c := range cases {
		c := c
		t.Run(c.raw, func(t *testing.T) {
			t.Parallel()
			sym, ok := ParseSymbol(c.raw)
			if !ok {
				t.Fatalf("ParseSymbol(%q) failed unexpectedly", c.raw)
			}
			if sym.Base != c.wantBase || sym.Quote != c.wantQuote || sym.Perpetual != c.wantPerp {
				t.Errorf("ParseSymbol(%q) = %+v, want base=%s quote=%s perp=%v",
					c.raw, sym, c.wantBase, c.wantQuote, c.wantPerp)
			}
		})
	}
}

func TestParseSymbolUnknownQuote(t *testing.T) {
	t.Parallel()
	if _, ok := ParseSymbol("XYZ"); ok {
		t.Error("ParseSymbol should fail for an unrecognized compact symbol")
	}
}

func TestSymbolHyphenForm(t *testing.T) {
	t.Parallel()
	s := Symbol{Base: "BTC", Quote: "USD", Perpetual: true}
	if got := s.Hyphen(); got != "BTC-USD-PERP" {
		t.Errorf("Hyphen() = %q, want BTC-USD-PERP", got)
	}
	s.Perpetual = false
	if got := s.Hyphen(); got != "BTC-USD" {
		t.Errorf("Hyphen() = %q, want BTC-USD", got)
	}
}

func TestSymbolCompactAndBaseQuoteUSD(t *testing.T) {
	t.Parallel()
	s := Symbol{Base: "ETH", Quote: "USDT"}
	if got := s.Compact(); got != "ETHUSDT" {
		t.Errorf("Compact() = %q, want ETHUSDT", got)
	}
	if got := s.BaseQuoteUSD(); got != "ETH-USD" {
		t.Errorf("BaseQuoteUSD() = %q, want ETH-USD", got)
	}
}

func TestParseSymbolIdempotentOnHyphenOutput(t *testing.T) {
	t.Parallel()
	sym, ok := ParseSymbol("btcusdt")
	if !ok {
		t.Fatal("ParseSymbol failed")
	}
	reparsed, ok := ParseSymbol(sym.Hyphen())
	if !ok {
		t.Fatalf("ParseSymbol(%q) failed on round trip", sym.Hyphen())
	}
	if reparsed != sym {
		t.Errorf("round trip mismatch: %+v != %+v", reparsed, sym)
	}
}
