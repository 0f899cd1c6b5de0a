// Package execdto holds the wire-level order, report, and fill types that
// cross the ingress/egress sockets, plus their JSON parsing and
// serialization per §4.D. Numeric fields use shopspring/decimal so prices
// and sizes round-trip as exact decimal strings instead of binary floats.
package execdto

import "github.com/shopspring/decimal"

// Action is the verb an inbound ExecutionOrder requests.
type Action string

const (
	ActionPlace   Action = "place"
	ActionCancel  Action = "cancel"
	ActionReplace Action = "replace"
)

// ProductType is the instrument category an order targets.
type ProductType string

const (
	ProductSpot      ProductType = "spot"
	ProductPerpetual ProductType = "perpetual"
	ProductFuture    ProductType = "future"
	ProductOption    ProductType = "option"
)

// Side is buy or sell.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType is the venue-neutral order type requested for a place.
type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStop      OrderType = "stop"
	OrderTypeStopLimit OrderType = "stop_limit"
	OrderTypePostOnly  OrderType = "post_only"
)

// TimeInForce is the requested time-in-force for a place.
type TimeInForce string

const (
	TIFGTC TimeInForce = "GTC"
	TIFIOC TimeInForce = "IOC"
	TIFFOK TimeInForce = "FOK"
	TIFPO  TimeInForce = "PO"
)

// PlaceDetails carries the fields relevant to action=place.
type PlaceDetails struct {
	Symbol      string
	Side        Side
	OrderType   OrderType
	TimeInForce TimeInForce
	Size        decimal.Decimal
	Price       *decimal.Decimal
	StopPrice   *decimal.Decimal
	ReduceOnly  bool
	Params      map[string]string
}

// CancelDetails carries the fields relevant to action=cancel.
type CancelDetails struct {
	ClIDToCancel    string
	Symbol          string
	ExchangeOrderID string
}

// ReplaceDetails carries the fields relevant to action=replace.
type ReplaceDetails struct {
	ClIDToReplace string
	NewPrice      *decimal.Decimal
	NewSize       *decimal.Decimal
}

// ExecutionOrder is one inbound ingress message (§5, "ExecutionOrder").
type ExecutionOrder struct {
	Version     int
	ClID        string
	Action      Action
	VenueType   string
	Venue       string
	ProductType ProductType
	TsNS        int64
	Place       *PlaceDetails
	Cancel      *CancelDetails
	Replace     *ReplaceDetails
	Tags        map[string]string
}
