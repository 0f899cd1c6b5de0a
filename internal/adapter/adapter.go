// Package adapter defines the contract every venue integration implements:
// initialize/connect lifecycle, synchronous order operations, and
// asynchronous callback registration for order updates and fills.
//
// Implementations may invoke the registered callbacks from any
// adapter-owned goroutine (the WebSocket read loop, a REST poller, a
// signer-response reader). internal/core treats them as concurrent and
// serializes everything downstream through its own queues; adapters
// themselves don't need to.
package adapter

import (
	"context"

	"github.com/latentspeed/execengine/internal/normalize"
)

// OrderRequest is the normalized place-order input an adapter receives.
// Fields already carry venue-facing conventions: Symbol is in the form the
// adapter expects, Side/Type/TimeInForce are lowercase strings, and
// Size/Price/StopPrice are decimal strings with no trailing zeros.
type OrderRequest struct {
	ClID        string
	Symbol      string
	Side        string
	OrderType   string
	TimeInForce string
	Size        string
	Price       string
	StopPrice   string
	ReduceOnly  bool
	Params      map[string]string
}

// CancelRequest is the normalized cancel-order input.
type CancelRequest struct {
	ClIDToCancel    string
	Symbol          string
	ExchangeOrderID string
}

// ModifyRequest is the normalized modify/replace-order input.
type ModifyRequest struct {
	ClIDToReplace string
	NewSize       string
	NewPrice      string
}

// OrderResponse is the synchronous result of place_order, cancel_order,
// modify_order, or query_order.
type OrderResponse struct {
	Success         bool
	ExchangeOrderID string
	Message         string
}

// OpenOrder is one entry in the list_open_orders result.
type OpenOrder struct {
	ClID            string
	ExchangeOrderID string
	Symbol          string
	Side            string
	Size            string
	Price           string
	Status          string
}

// ListFilter narrows list_open_orders to a category/symbol/settle/base_coin
// combination; zero-valued fields mean "don't filter on this".
type ListFilter struct {
	Category string
	Symbol   string
	Settle   string
	BaseCoin string
}

// OrderUpdate is the payload handed to the order-update callback. Status and
// Reason are the venue's raw strings — internal/normalize maps them to the
// canonical vocabulary before an ExecutionReport is built.
type OrderUpdate struct {
	ClID            string
	ExchangeOrderID string
	RawStatus       string
	RawReason       string
	Price           string
	Size            string
	FilledSize      string
}

// FillData is the payload handed to the fill callback.
type FillData struct {
	ClID            string
	ExchangeOrderID string
	ExecID          string
	Price           string
	Size            string
	FeeCurrency     string
	FeeAmount       string
	Liquidity       string
	Tags            map[string]string
}

// OrderUpdateFunc, FillFunc, and ErrorFunc are the callback shapes an
// adapter invokes. Implementations must recover from a panicking callback,
// log it, and drop it — a misbehaving callback must never kill an
// adapter-owned goroutine.
type OrderUpdateFunc func(OrderUpdate)
type FillFunc func(FillData)
type ErrorFunc func(string)

// Adapter is the contract every venue integration implements.
type Adapter interface {
	// Name returns the normalized lowercase venue key this adapter routes
	// under (e.g. "hyperliquid").
	Name() string

	Initialize(apiKey, apiSecret string, testnet bool) (bool, error)
	Connect(ctx context.Context) (bool, error)
	Disconnect()
	IsConnected() bool

	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResponse, error)
	CancelOrder(ctx context.Context, req CancelRequest) (OrderResponse, error)
	ModifyOrder(ctx context.Context, req ModifyRequest) (OrderResponse, error)
	QueryOrder(ctx context.Context, clID string) (OrderResponse, error)
	ListOpenOrders(ctx context.Context, filter ListFilter) ([]OpenOrder, error)

	SetOrderUpdateCallback(fn OrderUpdateFunc)
	SetFillCallback(fn FillFunc)
	SetErrorCallback(fn ErrorFunc)

	// StatusTable and ReasonTable return this venue's raw-status and
	// raw-reason mapper tables, so internal/core can normalize an
	// OrderUpdate without needing to know which venue produced it (§4.C,
	// "a reason-mapper table per venue").
	StatusTable() normalize.StatusTable
	ReasonTable() normalize.ReasonTable
}
