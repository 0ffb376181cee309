package crm

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriorityScoreComponents(t *testing.T) {
	// Platinum waiting 45 of 90 saturation days, no spend:
	// 40*1.0 + 35*0.5 + 25*0 = 57.5
	score, err := PriorityScore(TierPlatinum, 45, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 57.5 {
		t.Fatalf("PriorityScore = %v, want 57.5", score)
	}
}

func TestPriorityScoreSaturates(t *testing.T) {
	spend := decimal.NewFromInt(10_000_000)
	score, err := PriorityScore(TierPlatinum, 5000, spend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 100 {
		t.Fatalf("saturated PriorityScore = %v, want 100", score)
	}
}

func TestPriorityScoreTierContribution(t *testing.T) {
	spend := decimal.Zero
	var prev float64 = 101
	for _, tier := range []Tier{TierPlatinum, TierGold, TierSilver, TierBronze, TierNone} {
		score, err := PriorityScore(tier, 0, spend)
		if err != nil {
			t.Fatalf("tier %q: unexpected error: %v", tier, err)
		}
		if score >= prev {
			t.Fatalf("tier %q should score below the tier above (got %v, prev %v)", tier, score, prev)
		}
		prev = score
	}
	if score, _ := PriorityScore(TierNone, 0, spend); score != 0 {
		t.Fatalf("untiered zero-wait zero-spend score = %v, want 0", score)
	}
}

func TestPriorityScoreRejectsBadInput(t *testing.T) {
	if _, err := PriorityScore(TierGold, -1, decimal.Zero); !IsValidation(err) {
		t.Fatalf("negative daysWaiting: got %v, want ValidationError", err)
	}
	if _, err := PriorityScore(TierGold, 10, decimal.NewFromInt(-5)); !IsValidation(err) {
		t.Fatalf("negative spend: got %v, want ValidationError", err)
	}
}

func TestPriorityScoreAlwaysInRange(t *testing.T) {
	spends := []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(500),
		decimal.NewFromInt(99_999),
		decimal.NewFromInt(1_000_000),
	}
	for _, tier := range []Tier{TierPlatinum, TierGold, TierSilver, TierBronze, TierNone} {
		for _, days := range []int{0, 1, 45, 90, 91, 10_000} {
			for _, spend := range spends {
				score, err := PriorityScore(tier, days, spend)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if score < 0 || score > 100 {
					t.Fatalf("score %v out of [0,100] for tier=%q days=%d spend=%s", score, tier, days, spend)
				}
			}
		}
	}
}
