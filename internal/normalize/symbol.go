// Package normalize implements the three pure transformations the execution
// engine needs to talk about the same instrument, order status, and error
// reason across differently-shaped venues: symbol form conversion, venue
// status mapping, and venue reason-text mapping.
package normalize

import "strings"

// quoteCurrencies lists the quote currencies the symbol splitter recognizes,
// longest first so "USDT" matches before a hypothetical shorter prefix
// would. Order matters for ParseSymbol's greedy suffix match.
var quoteCurrencies = []string{"USDT", "USDC", "USD", "BTC", "ETH"}

// Symbol is a trading pair in canonical hyphen form, e.g. "BTC-USDT" or
// "BTC-USD-PERP". Inbound callers may also produce it from compact form via
// ParseSymbol.
type Symbol struct {
	Base      string
	Quote     string
	Perpetual bool
}

// Hyphen renders the canonical outbound form: "BASE-QUOTE" or
// "BASE-QUOTE-PERP" for perpetuals. Per §4.C, outbound reports and fills
// always use this form.
func (s Symbol) Hyphen() string {
	if s.Perpetual {
		return s.Base + "-" + s.Quote + "-PERP"
	}
	return s.Base + "-" + s.Quote
}

// Compact renders "BASEQUOTE" with no separator and no PERP suffix, the form
// most adapters expect on the wire.
func (s Symbol) Compact() string {
	return s.Base + s.Quote
}

// BaseQuoteUSD renders "BASE-USD" regardless of the original quote
// currency, the form the reference perpetual-futures adapter uses.
func (s Symbol) BaseQuoteUSD() string {
	return s.Base + "-USD"
}

// ParseSymbol accepts any of: compact ("BTCUSDT"), hyphen ("BTC-USDT"),
// slash ("BTC/USDT"), lowercase, with or without a trailing PERP marker, and
// returns the canonical Symbol. A separated form accepts any non-empty base
// and quote; ok is false if either part is empty, or if a compact form ends
// in no known quote currency.
func ParseSymbol(raw string) (Symbol, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "/", "-")
	perp := false

	if strings.HasSuffix(s, "-PERP") {
		perp = true
		s = strings.TrimSuffix(s, "-PERP")
	} else if strings.HasSuffix(s, "PERP") && !strings.Contains(s, "-") {
		perp = true
		s = strings.TrimSuffix(s, "PERP")
	}

	if strings.Contains(s, "-") {
		parts := strings.SplitN(s, "-", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return Symbol{}, false
		}
		return Symbol{Base: parts[0], Quote: parts[1], Perpetual: perp}, true
	}

	for _, q := range quoteCurrencies {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return Symbol{Base: s[:len(s)-len(q)], Quote: q, Perpetual: perp}, true
		}
	}
	return Symbol{}, false
}
