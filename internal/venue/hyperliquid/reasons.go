package hyperliquid

import "github.com/latentspeed/execengine/internal/normalize"

// statusTable maps Hyperliquid's raw order statuses (as they appear in both
// the WS orderUpdates feed and the REST order-query response) to the
// canonical vocabulary. Keys are lowercase because StatusTable.Map
// lowercases the raw status before lookup.
var statusTable = normalize.StatusTable{
	"open":             normalize.StatusOpen,
	"filled":           normalize.StatusFilled,
	"canceled":         normalize.StatusCanceled,
	"cancelled":        normalize.StatusCanceled,
	"rejected":         normalize.StatusRejected,
	"margincanceled":   normalize.StatusCanceled,
	"vaultwithdrawal":  normalize.StatusCanceled,
	"liquidatedcanceled": normalize.StatusCanceled,
	"triggered":        normalize.StatusAccepted,
	"resting":          normalize.StatusAccepted,
}

// reasonTable maps substrings of Hyperliquid's free-text order-rejection
// messages to the canonical reason vocabulary. Rules are evaluated in
// order, most specific first, per normalize.ReasonTable's contract.
var reasonTable = normalize.ReasonTable{
	{Substring: "insufficient margin", Reason: normalize.ReasonInsufficientBalance},
	{Substring: "insufficient balance", Reason: normalize.ReasonInsufficientBalance},
	{Substring: "post only", Reason: normalize.ReasonPostOnlyViolation},
	{Substring: "would have matched", Reason: normalize.ReasonPostOnlyViolation},
	{Substring: "min trade", Reason: normalize.ReasonMinSize},
	{Substring: "size must be", Reason: normalize.ReasonMinSize},
	{Substring: "price out", Reason: normalize.ReasonPriceOutOfBounds},
	{Substring: "too far", Reason: normalize.ReasonPriceOutOfBounds},
	{Substring: "rate limit", Reason: normalize.ReasonRateLimited},
	{Substring: "tick size", Reason: normalize.ReasonInvalidParams},
	{Substring: "invalid", Reason: normalize.ReasonInvalidParams},
	{Substring: "expired", Reason: normalize.ReasonExpired},
	{Substring: "timeout", Reason: normalize.ReasonNetworkError},
	{Substring: "connection", Reason: normalize.ReasonNetworkError},
}
