package hyperliquid

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// assetMeta is one entry from Hyperliquid's universe metadata: the coin
// symbol, its integer asset index (used on the wire in place of the
// symbol string), and its size-decimals precision.
type assetMeta struct {
	Name       string
	AssetIndex int
	SzDecimals int
}

// metaCache resolves a coin symbol to its asset index and size precision,
// refreshed lazily on first use and on any cache miss (a new listing).
type metaCache struct {
	client *restClient

	mu     sync.RWMutex
	byName map[string]assetMeta
}

func newMetaCache(client *restClient) *metaCache {
	return &metaCache{client: client, byName: make(map[string]assetMeta)}
}

func (c *metaCache) lookup(ctx context.Context, coin string) (assetMeta, error) {
	// Symbols arrive in hyphen form ("BTC-USD", "BTC-USDT-PERP"); the
	// universe is keyed by the bare coin name.
	if i := strings.IndexByte(coin, '-'); i > 0 {
		coin = coin[:i]
	}
	c.mu.RLock()
	m, ok := c.byName[coin]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	if err := c.refresh(ctx); err != nil {
		return assetMeta{}, err
	}

	c.mu.RLock()
	m, ok = c.byName[coin]
	c.mu.RUnlock()
	if !ok {
		return assetMeta{}, fmt.Errorf("unknown hyperliquid asset %q", coin)
	}
	return m, nil
}

func (c *metaCache) refresh(ctx context.Context) error {
	var resp struct {
		Universe []struct {
			Name       string `json:"name"`
			SzDecimals int    `json:"szDecimals"`
		} `json:"universe"`
	}
	if err := c.client.info(ctx, map[string]any{"type": "meta"}, &resp); err != nil {
		return fmt.Errorf("fetch meta: %w", err)
	}

	fresh := make(map[string]assetMeta, len(resp.Universe))
	for i, u := range resp.Universe {
		fresh[u.Name] = assetMeta{Name: u.Name, AssetIndex: i, SzDecimals: u.SzDecimals}
	}

	c.mu.Lock()
	c.byName = fresh
	c.mu.Unlock()
	return nil
}

// formatSize renders size at the asset's szDecimals precision, trimming
// trailing zeros the way the wire protocol expects.
func formatSize(size string, szDecimals int) string {
	return trimTrailingZeros(roundString(size, szDecimals))
}

// formatPrice rounds price to at most 6 - szDecimals decimal places (never
// fewer than zero), trimming trailing zeros. It applies no
// significant-figure limit.
func formatPrice(price string, szDecimals int) string {
	maxDecimals := 6 - szDecimals
	if maxDecimals < 0 {
		maxDecimals = 0
	}
	return trimTrailingZeros(roundString(price, maxDecimals))
}

func roundString(raw string, decimals int) string {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
