package normalize

import "testing"

func TestReasonTableMapPriorityOrder(t *testing.T) {
	t.Parallel()
	table := ReasonTable{
		{Substring: "insufficient balance", Reason: ReasonInsufficientBalance},
		{Substring: "insufficient", Reason: ReasonMinSize},
		{Substring: "rate limit", Reason: ReasonRateLimited},
	}
	// More specific rule listed first must win over the looser one below it.
	if got := table.Map("error: Insufficient Balance for order"); got != ReasonInsufficientBalance {
		t.Errorf("Map = %v, want insufficient_balance", got)
	}
	if got := table.Map("rate limit exceeded"); got != ReasonRateLimited {
		t.Errorf("Map = %v, want rate_limited", got)
	}
}

func TestReasonTableMapUnmatchedDefaultsToVenueReject(t *testing.T) {
	t.Parallel()
	table := ReasonTable{
		{Substring: "rate limit", Reason: ReasonRateLimited},
	}
	if got := table.Map("completely unrecognized error text"); got != ReasonVenueReject {
		t.Errorf("Map = %v, want venue_reject", got)
	}
}

func TestReasonTableMapCaseInsensitive(t *testing.T) {
	t.Parallel()
	table := ReasonTable{
		{Substring: "POST ONLY", Reason: ReasonPostOnlyViolation},
	}
	if got := table.Map("order would cross: post only rejected"); got != ReasonPostOnlyViolation {
		t.Errorf("Map = %v, want post_only_violation", got)
	}
}
