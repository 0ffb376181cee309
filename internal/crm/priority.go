package crm

import (
	"github.com/shopspring/decimal"
)

// Priority weights and ceilings are provisional defaults pending
// product confirmation; they are variables so deployments can tune
// them without touching call sites.
var (
	// TierWeight, WaitWeight and SpendWeight sum to 100 so a maxed-out
	// entry scores exactly 100.
	TierWeight  = 40.0
	WaitWeight  = 35.0
	SpendWeight = 25.0

	// WaitSaturationDays caps the wait contribution; waiting longer
	// adds nothing beyond this.
	WaitSaturationDays = 90

	// SpendCeiling normalizes lifetime spend; spend at or above it
	// contributes the full spend weight.
	SpendCeiling = decimal.NewFromInt(100000)
)

// PriorityScore computes the normalized waitlist priority in [0,100]
// from the client's tier, how long the entry has waited, and the
// client's lifetime spend. Scores are recomputed on every read.
func PriorityScore(tier Tier, daysWaiting int, lifetimeSpend decimal.Decimal) (float64, error) {
	if daysWaiting < 0 {
		return 0, &ValidationError{Field: "daysWaiting", Reason: "must not be negative"}
	}
	if lifetimeSpend.IsNegative() {
		return 0, &ValidationError{Field: "lifetimeSpend", Reason: "must not be negative"}
	}
	if !tier.Valid() {
		return 0, &ValidationError{Field: "tier", Reason: "unknown tier"}
	}

	tierPart := float64(rankNone-tier.Rank()) / float64(rankNone-rankPlatinum)

	waitPart := float64(daysWaiting) / float64(WaitSaturationDays)
	if waitPart > 1 {
		waitPart = 1
	}

	spendPart := 0.0
	if SpendCeiling.IsPositive() {
		spendPart, _ = lifetimeSpend.Div(SpendCeiling).Float64()
		if spendPart > 1 {
			spendPart = 1
		}
	}

	return clampScore(TierWeight*tierPart + WaitWeight*waitPart + SpendWeight*spendPart), nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
