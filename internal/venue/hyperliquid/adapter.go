// Package hyperliquid is the reference venue adapter: it implements
// adapter.Adapter against the Hyperliquid perpetuals exchange, translating
// the engine's normalized requests into Hyperliquid's /exchange action
// format and its WebSocket order/fill events back into the adapter
// package's callback shapes.
package hyperliquid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/latentspeed/execengine/internal/adapter"
	"github.com/latentspeed/execengine/internal/normalize"
	"github.com/latentspeed/execengine/internal/signer"
)

// Adapter implements adapter.Adapter for Hyperliquid.
type Adapter struct {
	logger *slog.Logger

	testnet     bool
	userAddress string
	signerCli   *signer.Client

	rest *restClient
	meta *metaCache
	feed *userFeed

	feedCtx    context.Context
	feedCancel context.CancelFunc

	mu        sync.RWMutex
	connected bool
	// clidToOid/oidToClid/clidToCloid track the engine's cl_id alongside
	// Hyperliquid's numeric order id and derived client-order-id hex
	// string, since cancel/modify by cl_id requires the oid Hyperliquid
	// itself assigned at acceptance time.
	clidToOid   map[string]int64
	oidToClid   map[int64]string
	clidToCloid map[string]string

	onOrderUpdate adapter.OrderUpdateFunc
	onFill        adapter.FillFunc
	onError       adapter.ErrorFunc
}

// New constructs an unconnected Adapter. Call Initialize then Connect.
func New(logger *slog.Logger, signerCli *signer.Client) *Adapter {
	return &Adapter{
		logger:      logger.With("component", "hyperliquid"),
		signerCli:   signerCli,
		clidToOid:   make(map[string]int64),
		oidToClid:   make(map[int64]string),
		clidToCloid: make(map[string]string),
	}
}

func (a *Adapter) Name() string { return "hyperliquid" }

// Initialize stores the user's public address and testnet selection.
// apiSecret is unused: signing happens out of process via signerCli, so no
// private key ever reaches this adapter.
func (a *Adapter) Initialize(apiKey, apiSecret string, testnet bool) (bool, error) {
	if apiKey == "" {
		return false, fmt.Errorf("hyperliquid: user address is required")
	}
	if !common.IsHexAddress(apiKey) {
		return false, fmt.Errorf("hyperliquid: %q is not a valid hex address", apiKey)
	}
	a.userAddress = common.HexToAddress(apiKey).Hex()
	a.testnet = testnet
	a.rest = newRestClient("", testnet, a.signerCli, a.userAddress)
	a.meta = newMetaCache(a.rest)
	return true, nil
}

func (a *Adapter) wsURL() string {
	if a.testnet {
		return "wss://api.hyperliquid-testnet.xyz/ws"
	}
	return "wss://api.hyperliquid.xyz/ws"
}

// Connect opens the user-events WebSocket feed and begins routing its
// events to the registered callbacks.
func (a *Adapter) Connect(ctx context.Context) (bool, error) {
	a.feed = newUserFeed(a.wsURL(), a.userAddress, a.logger)
	a.feed.onOrderUpdate = a.handleWSOrderUpdate
	a.feed.onFill = a.handleWSFill

	a.feedCtx, a.feedCancel = context.WithCancel(context.Background())
	go func() {
		if err := a.feed.Run(a.feedCtx); err != nil && a.feedCtx.Err() == nil {
			a.logger.Error("hyperliquid user feed exited", "error", err)
			if a.onError != nil {
				a.onError(err.Error())
			}
		}
	}()

	a.mu.Lock()
	a.connected = true
	a.mu.Unlock()
	return true, nil
}

func (a *Adapter) Disconnect() {
	if a.feedCancel != nil {
		a.feedCancel()
	}
	if a.feed != nil {
		a.feed.Close()
	}
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
}

func (a *Adapter) IsConnected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connected
}

func (a *Adapter) SetOrderUpdateCallback(fn adapter.OrderUpdateFunc) { a.onOrderUpdate = fn }
func (a *Adapter) SetFillCallback(fn adapter.FillFunc)               { a.onFill = fn }
func (a *Adapter) SetErrorCallback(fn adapter.ErrorFunc)             { a.onError = fn }

func (a *Adapter) StatusTable() normalize.StatusTable { return statusTable }
func (a *Adapter) ReasonTable() normalize.ReasonTable { return reasonTable }

// deriveCloid turns an arbitrary cl_id into the 128-bit hex string
// Hyperliquid requires for its client-order-id field, deterministically so
// repeated calls for the same cl_id always produce the same wire value.
func deriveCloid(clID string) string {
	sum := sha256.Sum256([]byte(clID))
	return "0x" + hex.EncodeToString(sum[:16])
}

func tifToHyperliquid(tif string) string {
	switch tif {
	case "ioc":
		return "Ioc"
	case "fok":
		return "Ioc" // Hyperliquid has no native FOK; Ioc is the closest all-or-nothing-at-touch approximation
	case "po", "post_only":
		return "Alo"
	default:
		return "Gtc"
	}
}

// buildOrderType maps the engine's order_type enum onto Hyperliquid's wire
// representation (§4.I): limit/post_only/market stay a plain "limit" object
// with the appropriate tif; stop and stop_limit become a "trigger" object
// carrying the stop price, with isMarket distinguishing the two.
func (a *Adapter) buildOrderType(req adapter.OrderRequest, m assetMeta) (map[string]any, error) {
	switch req.OrderType {
	case "market":
		return map[string]any{
			"limit": map[string]any{"tif": "Ioc"},
		}, nil
	case "stop", "stop_limit":
		if req.StopPrice == "" {
			return nil, fmt.Errorf("hyperliquid: stop_price required for order_type %q", req.OrderType)
		}
		return map[string]any{
			"trigger": map[string]any{
				"isMarket":  req.OrderType == "stop",
				"triggerPx": formatPrice(req.StopPrice, m.SzDecimals),
				"tpsl":      "sl",
			},
		}, nil
	default:
		return map[string]any{
			"limit": map[string]any{"tif": tifToHyperliquid(req.TimeInForce)},
		}, nil
	}
}

func (a *Adapter) PlaceOrder(ctx context.Context, req adapter.OrderRequest) (adapter.OrderResponse, error) {
	m, err := a.meta.lookup(ctx, req.Symbol)
	if err != nil {
		return adapter.OrderResponse{}, err
	}

	cloid := deriveCloid(req.ClID)
	isBuy := req.Side == "buy"

	orderType, err := a.buildOrderType(req, m)
	if err != nil {
		return adapter.OrderResponse{Success: false, Message: err.Error()}, nil
	}

	order := map[string]any{
		"a":     m.AssetIndex,
		"b":     isBuy,
		"p":     formatPrice(req.Price, m.SzDecimals),
		"s":     formatSize(req.Size, m.SzDecimals),
		"r":     req.ReduceOnly,
		"t":     orderType,
		"cloid": cloid,
	}

	action := map[string]any{
		"type":     "order",
		"orders":   []any{order},
		"grouping": "na",
	}

	env, err := a.rest.sendAction(ctx, action)
	if err != nil {
		return adapter.OrderResponse{Success: false, Message: err.Error()}, nil
	}

	var parsed struct {
		Type string `json:"type"`
		Data struct {
			Statuses []struct {
				Resting *struct {
					Oid int64 `json:"oid"`
				} `json:"resting,omitempty"`
				Filled *struct {
					Oid int64 `json:"oid"`
				} `json:"filled,omitempty"`
				Error string `json:"error,omitempty"`
			} `json:"statuses"`
		} `json:"data"`
	}
	if err := json.Unmarshal(env.Response, &parsed); err != nil {
		return adapter.OrderResponse{}, fmt.Errorf("parse place response: %w", err)
	}
	if len(parsed.Data.Statuses) == 0 {
		return adapter.OrderResponse{Success: false, Message: "empty statuses in response"}, nil
	}
	st := parsed.Data.Statuses[0]
	if st.Error != "" {
		return adapter.OrderResponse{Success: false, Message: st.Error}, nil
	}

	var oid int64
	switch {
	case st.Resting != nil:
		oid = st.Resting.Oid
	case st.Filled != nil:
		oid = st.Filled.Oid
	}

	a.mu.Lock()
	a.clidToOid[req.ClID] = oid
	a.oidToClid[oid] = req.ClID
	a.clidToCloid[req.ClID] = cloid
	a.mu.Unlock()

	return adapter.OrderResponse{Success: true, ExchangeOrderID: strconv.FormatInt(oid, 10)}, nil
}

func (a *Adapter) CancelOrder(ctx context.Context, req adapter.CancelRequest) (adapter.OrderResponse, error) {
	m, err := a.meta.lookup(ctx, req.Symbol)
	if err != nil {
		return adapter.OrderResponse{}, err
	}

	oid, err := a.resolveOid(req.ClIDToCancel, req.ExchangeOrderID)
	if err != nil {
		return adapter.OrderResponse{Success: false, Message: err.Error()}, nil
	}

	action := map[string]any{
		"type": "cancel",
		"cancels": []any{
			map[string]any{"a": m.AssetIndex, "o": oid},
		},
	}

	env, err := a.rest.sendAction(ctx, action)
	if err != nil {
		return adapter.OrderResponse{Success: false, Message: err.Error()}, nil
	}

	var parsed struct {
		Data struct {
			Statuses []string `json:"statuses"`
		} `json:"data"`
	}
	if err := json.Unmarshal(env.Response, &parsed); err == nil && len(parsed.Data.Statuses) > 0 {
		if parsed.Data.Statuses[0] != "success" {
			return adapter.OrderResponse{Success: false, Message: parsed.Data.Statuses[0]}, nil
		}
	}
	return adapter.OrderResponse{Success: true, ExchangeOrderID: strconv.FormatInt(oid, 10)}, nil
}

func (a *Adapter) ModifyOrder(ctx context.Context, req adapter.ModifyRequest) (adapter.OrderResponse, error) {
	a.mu.RLock()
	oid, ok := a.clidToOid[req.ClIDToReplace]
	a.mu.RUnlock()
	if !ok {
		return adapter.OrderResponse{Success: false, Message: "order not found for modify"}, nil
	}

	action := map[string]any{
		"type": "modify",
		"oid":  oid,
		"order": map[string]any{
			"p": req.NewPrice,
			"s": req.NewSize,
		},
	}

	if _, err := a.rest.sendAction(ctx, action); err != nil {
		return adapter.OrderResponse{Success: false, Message: err.Error()}, nil
	}
	return adapter.OrderResponse{Success: true, ExchangeOrderID: strconv.FormatInt(oid, 10)}, nil
}

func (a *Adapter) QueryOrder(ctx context.Context, clID string) (adapter.OrderResponse, error) {
	a.mu.RLock()
	oid, ok := a.clidToOid[clID]
	a.mu.RUnlock()
	if !ok {
		return adapter.OrderResponse{Success: false, Message: "unknown cl_id"}, nil
	}

	var resp struct {
		Status string `json:"status"`
		Order  struct {
			Order struct {
				Coin string `json:"coin"`
			} `json:"order"`
		} `json:"order"`
	}
	if err := a.rest.info(ctx, map[string]any{
		"type": "orderStatus",
		"user": a.userAddress,
		"oid":  oid,
	}, &resp); err != nil {
		return adapter.OrderResponse{}, err
	}

	return adapter.OrderResponse{Success: true, ExchangeOrderID: strconv.FormatInt(oid, 10), Message: resp.Status}, nil
}

func (a *Adapter) ListOpenOrders(ctx context.Context, filter adapter.ListFilter) ([]adapter.OpenOrder, error) {
	var raw []struct {
		Coin    string `json:"coin"`
		Oid     int64  `json:"oid"`
		Cloid   string `json:"cloid"`
		Side    string `json:"side"`
		LimitPx string `json:"limitPx"`
		Sz      string `json:"sz"`
	}
	if err := a.rest.info(ctx, map[string]any{
		"type": "openOrders",
		"user": a.userAddress,
	}, &raw); err != nil {
		return nil, err
	}

	out := make([]adapter.OpenOrder, 0, len(raw))
	for _, o := range raw {
		clID := o.Cloid
		a.mu.RLock()
		if existing, ok := a.oidToClid[o.Oid]; ok {
			clID = existing
		}
		a.mu.RUnlock()

		side := "buy"
		if o.Side != "B" {
			side = "sell"
		}
		out = append(out, adapter.OpenOrder{
			ClID:            clID,
			ExchangeOrderID: strconv.FormatInt(o.Oid, 10),
			Symbol:          o.Coin,
			Side:            side,
			Size:            o.Sz,
			Price:           o.LimitPx,
			Status:          "open",
		})

		a.mu.Lock()
		a.clidToOid[clID] = o.Oid
		a.oidToClid[o.Oid] = clID
		a.mu.Unlock()
	}
	return out, nil
}

func (a *Adapter) resolveOid(clID, exchangeOrderID string) (int64, error) {
	if exchangeOrderID != "" {
		oid, err := strconv.ParseInt(exchangeOrderID, 10, 64)
		if err == nil {
			return oid, nil
		}
	}
	a.mu.RLock()
	oid, ok := a.clidToOid[clID]
	a.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("order not found")
	}
	return oid, nil
}

func (a *Adapter) handleWSOrderUpdate(u wsOrderUpdate) {
	a.mu.RLock()
	clID, ok := a.oidToClid[u.Order.Oid]
	a.mu.RUnlock()
	if !ok {
		clID = u.Order.Cloid
	}

	if a.onOrderUpdate != nil {
		adapter.SafeOrderUpdate(a.logger, a.onOrderUpdate, adapter.OrderUpdate{
			ClID:            clID,
			ExchangeOrderID: strconv.FormatInt(u.Order.Oid, 10),
			RawStatus:       u.Status,
			Price:           u.Order.LimitPx,
			Size:            u.Order.OrigSz,
			FilledSize:      u.Order.Sz,
		})
	}
}

func (a *Adapter) handleWSFill(f wsFillEvent) {
	a.mu.RLock()
	clID, ok := a.oidToClid[f.Oid]
	a.mu.RUnlock()
	if !ok {
		clID = f.Cloid
	}

	liquidity := "maker"
	if f.Crossed {
		liquidity = "taker"
	}

	if a.onFill != nil {
		adapter.SafeFill(a.logger, a.onFill, adapter.FillData{
			ClID:            clID,
			ExchangeOrderID: strconv.FormatInt(f.Oid, 10),
			ExecID:          strconv.FormatInt(f.Tid, 10),
			Price:           f.Px,
			Size:            f.Sz,
			FeeCurrency:     f.FeeToken,
			FeeAmount:       f.Fee,
			Liquidity:       liquidity,
		})
	}
}
