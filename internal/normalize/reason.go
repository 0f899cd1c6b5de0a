package normalize

import "strings"

// Reason is the canonical error/outcome vocabulary from §4.C.
type Reason string

const (
	ReasonOK                  Reason = "ok"
	ReasonInvalidParams       Reason = "invalid_params"
	ReasonRiskBlocked         Reason = "risk_blocked"
	ReasonVenueReject         Reason = "venue_reject"
	ReasonInsufficientBalance Reason = "insufficient_balance"
	ReasonPostOnlyViolation   Reason = "post_only_violation"
	ReasonMinSize             Reason = "min_size"
	ReasonPriceOutOfBounds    Reason = "price_out_of_bounds"
	ReasonRateLimited         Reason = "rate_limited"
	ReasonNetworkError        Reason = "network_error"
	ReasonExpired             Reason = "expired"
)

// ReasonRule is one entry in a venue's reason-mapper table: if Substring is
// found (case-insensitive) in the venue's raw error text, the rule's Reason
// applies. Rules are evaluated in slice order, so put more specific
// substrings before more general ones within the same table.
type ReasonRule struct {
	Substring string
	Reason    Reason
}

// ReasonTable is an ordered list of ReasonRules for one venue.
type ReasonTable []ReasonRule

// Map finds the first rule whose Substring occurs in raw (case-insensitive)
// and returns its Reason. Unmatched text defaults to ReasonVenueReject, per
// §4.C; the raw text itself is preserved by the caller as reason_text.
func (t ReasonTable) Map(raw string) Reason {
	lower := strings.ToLower(raw)
	for _, rule := range t {
		if strings.Contains(lower, strings.ToLower(rule.Substring)) {
			return rule.Reason
		}
	}
	return ReasonVenueReject
}
