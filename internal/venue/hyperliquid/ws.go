// ws.go implements the Hyperliquid user-events WebSocket feed: order
// lifecycle updates and fills for one user address. Connection lifecycle,
// auto-reconnect with exponential backoff, and the read-deadline liveness
// check are adapted nearly line-for-line from the teacher's
// exchange/ws.go WSFeed, repointed at Hyperliquid's subscription message
// shape and its two private channels instead of Polymarket's market+user
// channels.
package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingInterval     = 50 * time.Second
	readTimeout      = 90 * time.Second
	maxReconnectWait = 30 * time.Second
	writeTimeout     = 10 * time.Second
)

type wsOrderUpdate struct {
	Order struct {
		Coin string `json:"coin"`
		Oid  int64  `json:"oid"`
		Cloid string `json:"cloid"`
		Side  string `json:"side"`
		LimitPx string `json:"limitPx"`
		Sz      string `json:"sz"`
		OrigSz  string `json:"origSz"`
	} `json:"order"`
	Status          string `json:"status"`
	StatusTimestamp int64  `json:"statusTimestamp"`
}

type wsFillEvent struct {
	Coin string `json:"coin"`
	Px   string `json:"px"`
	Sz   string `json:"sz"`
	Side string `json:"side"`
	Time int64  `json:"time"`
	Oid  int64  `json:"oid"`
	Cloid string `json:"cloid"`
	Tid   int64  `json:"tid"`
	Fee   string `json:"fee"`
	FeeToken string `json:"feeToken"`
	Liquidation *struct{} `json:"liquidation,omitempty"`
	Crossed bool `json:"crossed"`
}

type wsEnvelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// userFeed maintains one WebSocket connection subscribed to orderUpdates
// and userFills for a single user address.
type userFeed struct {
	url         string
	userAddress string

	connMu sync.Mutex
	conn   *websocket.Conn

	onOrderUpdate func(wsOrderUpdate)
	onFill        func(wsFillEvent)

	logger *slog.Logger
}

func newUserFeed(url, userAddress string, logger *slog.Logger) *userFeed {
	return &userFeed{
		url:         url,
		userAddress: userAddress,
		logger:      logger.With("component", "hyperliquid_ws"),
	}
}

// Run connects and maintains the WebSocket connection with auto-reconnect.
// Blocks until ctx is cancelled.
func (f *userFeed) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		err := f.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		f.logger.Warn("hyperliquid websocket disconnected, reconnecting",
			"error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxReconnectWait {
			backoff = maxReconnectWait
		}
	}
}

func (f *userFeed) Close() error {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}

func (f *userFeed) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	f.connMu.Lock()
	f.conn = conn
	f.connMu.Unlock()

	defer func() {
		f.connMu.Lock()
		conn.Close()
		f.conn = nil
		f.connMu.Unlock()
	}()

	if err := f.subscribe(); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	f.logger.Info("hyperliquid websocket connected")

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go f.pingLoop(pingCtx)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		f.dispatch(msg)
	}
}

func (f *userFeed) subscribe() error {
	for _, ch := range []string{"orderUpdates", "userFills"} {
		msg := map[string]any{
			"method": "subscribe",
			"subscription": map[string]any{
				"type": ch,
				"user": f.userAddress,
			},
		}
		if err := f.writeJSON(msg); err != nil {
			return err
		}
	}
	return nil
}

func (f *userFeed) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = f.writeJSON(map[string]any{"method": "ping"})
		}
	}
}

func (f *userFeed) writeJSON(v any) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.conn == nil {
		return fmt.Errorf("not connected")
	}
	f.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return f.conn.WriteJSON(v)
}

func (f *userFeed) dispatch(raw []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		f.logger.Warn("malformed websocket frame", "error", err)
		return
	}

	switch env.Channel {
	case "orderUpdates":
		var updates []wsOrderUpdate
		if err := json.Unmarshal(env.Data, &updates); err != nil {
			f.logger.Warn("malformed orderUpdates frame", "error", err)
			return
		}
		for _, u := range updates {
			if f.onOrderUpdate != nil {
				f.onOrderUpdate(u)
			}
		}
	case "userFills":
		var payload struct {
			Fills []wsFillEvent `json:"fills"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			f.logger.Warn("malformed userFills frame", "error", err)
			return
		}
		for _, fl := range payload.Fills {
			if f.onFill != nil {
				f.onFill(fl)
			}
		}
	}
}
