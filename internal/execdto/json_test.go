package execdto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

const samplePlaceJSON = `{"version":1,"cl_id":"ORDER-123","action":"place","venue_type":"cex","venue":"hyperliquid","product_type":"perpetual","ts_ns":0,"details":{"symbol":"BTC-USDT-PERP","side":"buy","order_type":"limit","time_in_force":"GTC","price":50000.0,"size":0.01,"stop_price":null,"reduce_only":false,"params":{},"cancel":{},"replace":{}},"tags":{"strategy":"alpha"}}`

func TestParseExecutionOrderPlace(t *testing.T) {
	t.Parallel()
	order, err := ParseExecutionOrder([]byte(samplePlaceJSON))
	if err != nil {
		t.Fatalf("ParseExecutionOrder failed: %v", err)
	}
	if order.ClID != "ORDER-123" {
		t.Errorf("ClID = %q, want ORDER-123", order.ClID)
	}
	if order.Action != ActionPlace {
		t.Errorf("Action = %q, want place", order.Action)
	}
	if order.Place == nil {
		t.Fatal("Place details missing")
	}
	if order.Place.Symbol != "BTC-USDT-PERP" {
		t.Errorf("Symbol = %q", order.Place.Symbol)
	}
	if !order.Place.Size.Equal(decimal.NewFromFloat(0.01)) {
		t.Errorf("Size = %v, want 0.01", order.Place.Size)
	}
	if order.Tags["strategy"] != "alpha" {
		t.Errorf("Tags[strategy] = %q, want alpha", order.Tags["strategy"])
	}
}

func TestParseExecutionOrderTolerantOfUnknownFields(t *testing.T) {
	t.Parallel()
	raw := `{"cl_id":"X1","action":"place","venue":"hyperliquid","unexpected_field":123,"details":{"symbol":"BTC-USD","side":"buy","order_type":"market","size":1,"something_else":true}}`
	if _, err := ParseExecutionOrder([]byte(raw)); err != nil {
		t.Fatalf("unexpected fields should be tolerated, got error: %v", err)
	}
}

func TestParseExecutionOrderMissingOptionalFields(t *testing.T) {
	t.Parallel()
	raw := `{"cl_id":"X2","action":"place","venue":"hyperliquid","details":{"symbol":"BTC-USD","side":"sell","order_type":"limit","size":1}}`
	order, err := ParseExecutionOrder([]byte(raw))
	if err != nil {
		t.Fatalf("missing optional fields should still parse, got error: %v", err)
	}
	if order.Place.Price != nil {
		t.Error("Price should be nil when omitted")
	}
	if order.Tags == nil {
		t.Error("Tags should default to an empty map, not nil")
	}
}

func TestParseExecutionOrderInvalidStructural(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"malformed json":       `{not json`,
		"unknown action":       `{"cl_id":"X","action":"explode","venue":"hyperliquid"}`,
		"missing cl_id":        `{"action":"place","venue":"hyperliquid","details":{"symbol":"BTC-USD","side":"buy","order_type":"limit","size":1}}`,
		"missing venue":        `{"cl_id":"X","action":"place","details":{"symbol":"BTC-USD","side":"buy","order_type":"limit","size":1}}`,
		"place missing symbol": `{"cl_id":"X","action":"place","venue":"hyperliquid","details":{"side":"buy","order_type":"limit","size":1}}`,
		"place missing size":   `{"cl_id":"X","action":"place","venue":"hyperliquid","details":{"symbol":"BTC-USD","side":"buy","order_type":"limit"}}`,
		"cl_id too long":       `{"cl_id":"` + stringOfLen(65) + `","action":"place","venue":"hyperliquid","details":{"symbol":"BTC-USD","side":"buy","order_type":"limit","size":1}}`,
	}
	for name, raw := range cases {
		name, raw := name, raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseExecutionOrder([]byte(raw)); err == nil {
				t.Error("expected a parse error")
			}
		})
	}
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestExecutionOrderRoundTrip(t *testing.T) {
	t.Parallel()
	order, err := ParseExecutionOrder([]byte(samplePlaceJSON))
	if err != nil {
		t.Fatalf("ParseExecutionOrder failed: %v", err)
	}
	out, err := MarshalExecutionOrder(order)
	if err != nil {
		t.Fatalf("MarshalExecutionOrder failed: %v", err)
	}
	reparsed, err := ParseExecutionOrder(out)
	if err != nil {
		t.Fatalf("ParseExecutionOrder on the marshaled output failed: %v", err)
	}
	if reparsed.ClID != order.ClID || reparsed.Action != order.Action {
		t.Errorf("round trip mismatch: %+v vs %+v", reparsed, order)
	}
	if !reparsed.Place.Size.Equal(order.Place.Size) {
		t.Errorf("round trip size mismatch: %v vs %v", reparsed.Place.Size, order.Place.Size)
	}
}

func TestMarshalExecutionReportStableKeys(t *testing.T) {
	t.Parallel()
	r := &ExecutionReport{
		Version:         1,
		ClID:            "ORDER-123",
		Status:          ReportAccepted,
		ExchangeOrderID: "abc123",
		ReasonCode:      "ok",
		ReasonText:      "Order placed",
		TsNS:            1731300000000000000,
		Tags:            map[string]string{"venue": "hyperliquid", "strategy": "alpha"},
	}
	out, err := MarshalExecutionReport(r)
	if err != nil {
		t.Fatalf("MarshalExecutionReport failed: %v", err)
	}
	var roundTrip map[string]any
	if err := json.Unmarshal(out, &roundTrip); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if roundTrip["status"] != "accepted" {
		t.Errorf("status = %v, want accepted", roundTrip["status"])
	}
	ts, ok := roundTrip["ts_ns"].(float64)
	if !ok || int64(ts) != 1731300000000000000 {
		t.Errorf("ts_ns = %v, want decimal integer 1731300000000000000", roundTrip["ts_ns"])
	}
	const wantJSON = `{"version":1,"cl_id":"ORDER-123","status":"accepted","exchange_order_id":"abc123","reason_code":"ok","reason_text":"Order placed","ts_ns":1731300000000000000,"tags":{"strategy":"alpha","venue":"hyperliquid"}}`
	if string(out) != wantJSON {
		t.Errorf("MarshalExecutionReport key order:\n got %s\nwant %s", out, wantJSON)
	}
}

func TestMarshalFillRoundTrip(t *testing.T) {
	t.Parallel()
	f := &Fill{
		Version:         1,
		ClID:            "ORDER-123",
		ExchangeOrderID: "abc123",
		ExecID:          "fill-1",
		SymbolOrPair:    "BTC-USDT-PERP",
		Price:           decimal.NewFromFloat(50000.0),
		Size:            decimal.NewFromFloat(0.005),
		FeeCurrency:     "USDT",
		FeeAmount:       decimal.NewFromFloat(0.02),
		Liquidity:       LiquidityMaker,
		TsNS:            1731300000000000000,
		Tags:            map[string]string{"venue": "hyperliquid"},
	}
	out, err := MarshalFill(f)
	if err != nil {
		t.Fatalf("MarshalFill failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if decoded["liquidity"] != "maker" {
		t.Errorf("liquidity = %v, want maker", decoded["liquidity"])
	}
}
