package crm

import (
	"fmt"
	"strings"
)

// Tier is the closed client/inventory classification. Ordering is by
// rank, never by string comparison.
type Tier string

const (
	TierPlatinum Tier = "Platinum"
	TierGold     Tier = "Gold"
	TierSilver   Tier = "Silver"
	TierBronze   Tier = "Bronze"
	TierNone     Tier = ""
)

const (
	rankPlatinum = 1
	rankGold     = 2
	rankSilver   = 3
	rankBronze   = 4
	rankNone     = 5
)

// DefaultCadenceDays applies to clients without an assigned tier.
const DefaultCadenceDays = 90

var cadenceDays = map[Tier]int{
	TierPlatinum: 14,
	TierGold:     21,
	TierSilver:   30,
	TierBronze:   60,
}

// Rank returns the total-order rank of the tier: Platinum=1 through
// Bronze=4. An absent tier ranks lowest.
func (t Tier) Rank() int {
	switch t {
	case TierPlatinum:
		return rankPlatinum
	case TierGold:
		return rankGold
	case TierSilver:
		return rankSilver
	case TierBronze:
		return rankBronze
	default:
		return rankNone
	}
}

func (t Tier) Valid() bool {
	switch t {
	case TierPlatinum, TierGold, TierSilver, TierBronze, TierNone:
		return true
	}
	return false
}

// CadenceDays returns the follow-up interval for the tier in days.
func (t Tier) CadenceDays() int {
	if d, ok := cadenceDays[t]; ok {
		return d
	}
	return DefaultCadenceDays
}

// ParseTier validates a stored tier value. The empty string is the
// valid "no tier" value; anything else must name one of the four tiers.
func ParseTier(s string) (Tier, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return TierNone, nil
	}
	for _, t := range []Tier{TierPlatinum, TierGold, TierSilver, TierBronze} {
		if strings.EqualFold(trimmed, string(t)) {
			return t, nil
		}
	}
	return TierNone, &ValidationError{Field: "tier", Reason: fmt.Sprintf("unknown tier %q", s)}
}

// CadenceTable returns the full tier-to-days schedule, including the
// default for untiered clients, for static configuration consumers.
func CadenceTable() map[string]int {
	table := make(map[string]int, len(cadenceDays)+1)
	for t, d := range cadenceDays {
		table[string(t)] = d
	}
	table["default"] = DefaultCadenceDays
	return table
}
