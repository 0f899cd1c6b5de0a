package execdto

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// wireOrder mirrors the ExecutionOrder wire shape from §6 exactly, using
// json.Number-friendly fields so both 50000.0 and "50000" parse as prices.
type wireOrder struct {
	Version     int               `json:"version"`
	ClID        string            `json:"cl_id"`
	Action      string            `json:"action"`
	VenueType   string            `json:"venue_type"`
	Venue       string            `json:"venue"`
	ProductType string            `json:"product_type"`
	TsNS        int64             `json:"ts_ns"`
	Details     wireOrderDetails  `json:"details"`
	Tags        map[string]string `json:"tags"`
}

type wireOrderDetails struct {
	Symbol          string            `json:"symbol"`
	Side            string            `json:"side"`
	OrderType       string            `json:"order_type"`
	TimeInForce     string            `json:"time_in_force"`
	Price           *decimal.Decimal  `json:"price"`
	Size            *decimal.Decimal  `json:"size"`
	StopPrice       *decimal.Decimal  `json:"stop_price"`
	ReduceOnly      bool              `json:"reduce_only"`
	Params          map[string]string `json:"params"`
	CancelClID      string            `json:"cancel_cl_id_to_cancel"`
	CancelSymbol    string            `json:"cancel_symbol"`
	CancelExchID    string            `json:"cancel_exchange_order_id"`
	ReplaceClID     string            `json:"replace_cl_id_to_replace"`
	ReplaceNewPrice *decimal.Decimal  `json:"new_price"`
	ReplaceNewSize  *decimal.Decimal  `json:"new_size"`
}

// ParseExecutionOrder decodes raw into an ExecutionOrder. Per §4.D, it
// tolerates unknown extra fields (json.Unmarshal already does this for
// struct targets) and missing optional fields (they resolve to the zero
// value). Structural problems — invalid JSON, an unrecognized action, or
// missing fields the chosen action requires — are returned as an error; the
// caller (internal/core) converts that into a rejected report with
// invalid_params and never invokes the adapter.
func ParseExecutionOrder(raw []byte) (*ExecutionOrder, error) {
	var w wireOrder
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("malformed json: %w", err)
	}
	if w.ClID == "" {
		return nil, fmt.Errorf("missing cl_id")
	}
	if len(w.ClID) > 64 {
		return nil, fmt.Errorf("cl_id exceeds 64 characters")
	}
	if w.Venue == "" {
		return nil, fmt.Errorf("missing venue")
	}

	order := &ExecutionOrder{
		Version:     w.Version,
		ClID:        w.ClID,
		VenueType:   w.VenueType,
		Venue:       w.Venue,
		ProductType: ProductType(w.ProductType),
		TsNS:        w.TsNS,
	}

	switch Action(w.Action) {
	case ActionPlace:
		if w.Details.Symbol == "" || w.Details.Side == "" || w.Details.OrderType == "" {
			return nil, fmt.Errorf("place requires symbol, side, order_type")
		}
		if w.Details.Size == nil {
			return nil, fmt.Errorf("place requires size")
		}
		order.Action = ActionPlace
		order.Place = &PlaceDetails{
			Symbol:      w.Details.Symbol,
			Side:        Side(w.Details.Side),
			OrderType:   OrderType(w.Details.OrderType),
			TimeInForce: TimeInForce(w.Details.TimeInForce),
			Size:        *w.Details.Size,
			Price:       w.Details.Price,
			StopPrice:   w.Details.StopPrice,
			ReduceOnly:  w.Details.ReduceOnly,
			Params:      w.Details.Params,
		}
	case ActionCancel:
		if w.Details.CancelClID == "" {
			return nil, fmt.Errorf("cancel requires cancel_cl_id_to_cancel")
		}
		order.Action = ActionCancel
		order.Cancel = &CancelDetails{
			ClIDToCancel:    w.Details.CancelClID,
			Symbol:          w.Details.CancelSymbol,
			ExchangeOrderID: w.Details.CancelExchID,
		}
	case ActionReplace:
		if w.Details.ReplaceClID == "" {
			return nil, fmt.Errorf("replace requires replace_cl_id_to_replace")
		}
		order.Action = ActionReplace
		order.Replace = &ReplaceDetails{
			ClIDToReplace: w.Details.ReplaceClID,
			NewPrice:      w.Details.ReplaceNewPrice,
			NewSize:       w.Details.ReplaceNewSize,
		}
	default:
		return nil, fmt.Errorf("unknown action %q", w.Action)
	}

	if w.Tags != nil {
		order.Tags = w.Tags
	} else {
		order.Tags = map[string]string{}
	}
	return order, nil
}

// MarshalExecutionOrder serializes an ExecutionOrder back to its wire form,
// used by round-trip tests (§8: "parsing then serializing a known-good
// ExecutionOrder yields an equivalent structure").
func MarshalExecutionOrder(o *ExecutionOrder) ([]byte, error) {
	w := wireOrder{
		Version:     o.Version,
		ClID:        o.ClID,
		Action:      string(o.Action),
		VenueType:   o.VenueType,
		Venue:       o.Venue,
		ProductType: string(o.ProductType),
		TsNS:        o.TsNS,
		Tags:        o.Tags,
	}
	switch o.Action {
	case ActionPlace:
		w.Details = wireOrderDetails{
			Symbol:      o.Place.Symbol,
			Side:        string(o.Place.Side),
			OrderType:   string(o.Place.OrderType),
			TimeInForce: string(o.Place.TimeInForce),
			Size:        &o.Place.Size,
			Price:       o.Place.Price,
			StopPrice:   o.Place.StopPrice,
			ReduceOnly:  o.Place.ReduceOnly,
			Params:      o.Place.Params,
		}
	case ActionCancel:
		w.Details = wireOrderDetails{
			CancelClID:   o.Cancel.ClIDToCancel,
			CancelSymbol: o.Cancel.Symbol,
			CancelExchID: o.Cancel.ExchangeOrderID,
		}
	case ActionReplace:
		w.Details = wireOrderDetails{
			ReplaceClID:     o.Replace.ClIDToReplace,
			ReplaceNewPrice: o.Replace.NewPrice,
			ReplaceNewSize:  o.Replace.NewSize,
		}
	}
	return json.Marshal(w)
}

// wireReport mirrors the ExecutionReport wire shape from §6.
type wireReport struct {
	Version         int               `json:"version"`
	ClID            string            `json:"cl_id"`
	Status          string            `json:"status"`
	ExchangeOrderID string            `json:"exchange_order_id,omitempty"`
	ReasonCode      string            `json:"reason_code"`
	ReasonText      string            `json:"reason_text"`
	TsNS            int64             `json:"ts_ns"`
	Tags            map[string]string `json:"tags"`
}

// MarshalExecutionReport serializes r with stable key ordering (struct
// field order) and the nanosecond timestamp as a decimal integer.
func MarshalExecutionReport(r *ExecutionReport) ([]byte, error) {
	w := wireReport{
		Version:         r.Version,
		ClID:            r.ClID,
		Status:          string(r.Status),
		ExchangeOrderID: r.ExchangeOrderID,
		ReasonCode:      r.ReasonCode,
		ReasonText:      r.ReasonText,
		TsNS:            r.TsNS,
		Tags:            r.Tags,
	}
	return json.Marshal(w)
}

// wireFill mirrors the Fill wire shape from §6.
type wireFill struct {
	Version         int               `json:"version"`
	ClID            string            `json:"cl_id"`
	ExchangeOrderID string            `json:"exchange_order_id"`
	ExecID          string            `json:"exec_id"`
	SymbolOrPair    string            `json:"symbol_or_pair"`
	Price           decimal.Decimal   `json:"price"`
	Size            decimal.Decimal   `json:"size"`
	FeeCurrency     string            `json:"fee_currency"`
	FeeAmount       decimal.Decimal   `json:"fee_amount"`
	Liquidity       string            `json:"liquidity"`
	TsNS            int64             `json:"ts_ns"`
	Tags            map[string]string `json:"tags"`
}

// MarshalFill serializes f with stable key ordering.
func MarshalFill(f *Fill) ([]byte, error) {
	w := wireFill{
		Version:         f.Version,
		ClID:            f.ClID,
		ExchangeOrderID: f.ExchangeOrderID,
		ExecID:          f.ExecID,
		SymbolOrPair:    f.SymbolOrPair,
		Price:           f.Price,
		Size:            f.Size,
		FeeCurrency:     f.FeeCurrency,
		FeeAmount:       f.FeeAmount,
		Liquidity:       string(f.Liquidity),
		TsNS:            f.TsNS,
		Tags:            f.Tags,
	}
	return json.Marshal(w)
}
