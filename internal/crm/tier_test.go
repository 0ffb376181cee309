package crm

import "testing"

func TestCadenceDaysTable(t *testing.T) {
	cases := []struct {
		tier Tier
		want int
	}{
		{TierPlatinum, 14},
		{TierGold, 21},
		{TierSilver, 30},
		{TierBronze, 60},
		{TierNone, 90},
	}
	for _, tc := range cases {
		if got := tc.tier.CadenceDays(); got != tc.want {
			t.Fatalf("CadenceDays(%q) = %d, want %d", tc.tier, got, tc.want)
		}
	}
}

func TestTierRankTotalOrder(t *testing.T) {
	order := []Tier{TierPlatinum, TierGold, TierSilver, TierBronze, TierNone}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Fatalf("expected %q to rank above %q", order[i-1], order[i])
		}
	}
	if TierPlatinum.Rank() != 1 || TierBronze.Rank() != 4 {
		t.Fatalf("unexpected rank endpoints: Platinum=%d Bronze=%d", TierPlatinum.Rank(), TierBronze.Rank())
	}
}

func TestParseTier(t *testing.T) {
	if tier, err := ParseTier("platinum"); err != nil || tier != TierPlatinum {
		t.Fatalf("ParseTier(platinum) = %q, %v", tier, err)
	}
	if tier, err := ParseTier("  Gold "); err != nil || tier != TierGold {
		t.Fatalf("ParseTier with whitespace = %q, %v", tier, err)
	}
	if tier, err := ParseTier(""); err != nil || tier != TierNone {
		t.Fatalf("ParseTier(empty) = %q, %v", tier, err)
	}
	if _, err := ParseTier("Diamond"); err == nil {
		t.Fatalf("expected validation error for unknown tier")
	} else if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestCadenceTableIncludesDefault(t *testing.T) {
	table := CadenceTable()
	if table["Platinum"] != 14 || table["default"] != 90 {
		t.Fatalf("unexpected cadence table: %v", table)
	}
	if len(table) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(table))
	}
}
