package crm

// Matching thresholds are provisional defaults pending product
// confirmation, kept as variables alongside the priority weights.
var (
	// TierDeltaPenalty is subtracted per rank of distance between the
	// client tier and the watch tier. At 20 a delta of 2 can never
	// reach the good-match band.
	TierDeltaPenalty = 20.0

	// PriorityShortfallWeight scales how far below a perfect priority
	// score the entry sits.
	PriorityShortfallWeight = 0.2

	PerfectMatchMinScore  = 90.0
	GoodMatchMinScore     = 70.0
	GoodMatchMaxTierDelta = 1
)

// MatchBand classifies a scored waitlist/inventory pair.
type MatchBand int

const (
	BandNone MatchBand = iota
	BandGood
	BandPerfect
)

// TierDelta is the absolute rank distance between a client tier and an
// inventory tier rank.
func TierDelta(clientRank, watchRank int) int {
	d := clientRank - watchRank
	if d < 0 {
		d = -d
	}
	return d
}

// MatchScore scores a pair: decreasing in tier distance, increasing in
// the entry's priority score, clamped to [0,100].
func MatchScore(tierDelta int, priorityScore float64) float64 {
	score := 100 - TierDeltaPenalty*float64(tierDelta) - PriorityShortfallWeight*(100-priorityScore)
	return clampScore(score)
}

// ClassifyMatch buckets a scored pair. Pairs outside both bands are
// not surfaced.
func ClassifyMatch(tierDelta int, matchScore float64) MatchBand {
	if tierDelta == 0 && matchScore >= PerfectMatchMinScore {
		return BandPerfect
	}
	if tierDelta <= GoodMatchMaxTierDelta && matchScore >= GoodMatchMinScore {
		return BandGood
	}
	return BandNone
}
