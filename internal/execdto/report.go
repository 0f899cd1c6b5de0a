package execdto

import "github.com/shopspring/decimal"

// ReportStatus is an outbound report status. The constants below name the
// four statuses the core sets for request outcomes; reports driven by venue
// order updates carry the canonical normalize.Status string instead.
type ReportStatus string

const (
	ReportAccepted ReportStatus = "accepted"
	ReportRejected ReportStatus = "rejected"
	ReportCanceled ReportStatus = "canceled"
	ReportReplaced ReportStatus = "replaced"
)

// ExecutionReport is one outbound message on the exec.report topic.
type ExecutionReport struct {
	Version         int
	ClID            string
	Status          ReportStatus
	ExchangeOrderID string
	ReasonCode      string
	ReasonText      string
	TsNS            int64
	Tags            map[string]string
}

// Liquidity is maker or taker, carried on a Fill.
type Liquidity string

const (
	LiquidityMaker Liquidity = "maker"
	LiquidityTaker Liquidity = "taker"
)

// ExecutionType distinguishes fills the engine itself placed from fills
// observed on an order it did not originate (§5, "execution_type").
type ExecutionType string

const (
	ExecutionLive     ExecutionType = "live"
	ExecutionExternal ExecutionType = "external"
)

// Fill is one outbound message on the exec.fill topic.
type Fill struct {
	Version         int
	ClID            string
	ExchangeOrderID string
	ExecID          string
	SymbolOrPair    string
	Price           decimal.Decimal
	Size            decimal.Decimal
	FeeCurrency     string
	FeeAmount       decimal.Decimal
	Liquidity       Liquidity
	TsNS            int64
	Tags            map[string]string
}
