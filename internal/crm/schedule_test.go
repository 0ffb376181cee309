package crm

import (
	"testing"
	"time"
)

func fixedScheduler(now time.Time) *Scheduler {
	s := NewScheduler()
	s.Now = func() time.Time { return now }
	return s
}

func TestNeedsFollowUpNeverContacted(t *testing.T) {
	sched := fixedScheduler(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	for _, tier := range []Tier{TierPlatinum, TierGold, TierSilver, TierBronze, TierNone} {
		if !sched.NeedsFollowUp(tier, nil) {
			t.Fatalf("never-contacted %q client should need follow-up", tier)
		}
		if days := sched.DaysUntilFollowUp(tier, nil); days != 0 {
			t.Fatalf("never-contacted %q client: DaysUntilFollowUp = %d, want 0", tier, days)
		}
	}
}

func TestFollowUpBoundaryInclusive(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	sched := fixedScheduler(now)

	last := now.AddDate(0, 0, -14)
	if !sched.NeedsFollowUp(TierPlatinum, &last) {
		t.Fatalf("Platinum contacted exactly 14 days ago should need follow-up")
	}
	if overdue := sched.DaysOverdue(TierPlatinum, &last); overdue != 0 {
		t.Fatalf("DaysOverdue at boundary = %d, want 0", overdue)
	}
}

func TestFollowUpNotYetDue(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	sched := fixedScheduler(now)

	last := now.AddDate(0, 0, -10)
	if sched.NeedsFollowUp(TierPlatinum, &last) {
		t.Fatalf("Platinum contacted 10 days ago should not need follow-up")
	}
	if days := sched.DaysUntilFollowUp(TierPlatinum, &last); days != 4 {
		t.Fatalf("DaysUntilFollowUp = %d, want 4", days)
	}
}

func TestDaysOverdueIsNegatedDaysUntil(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	sched := fixedScheduler(now)

	for _, tier := range []Tier{TierPlatinum, TierGold, TierSilver, TierBronze, TierNone} {
		for _, daysAgo := range []int{0, 1, 13, 14, 15, 30, 60, 89, 90, 91, 365} {
			last := now.AddDate(0, 0, -daysAgo)
			until := sched.DaysUntilFollowUp(tier, &last)
			overdue := sched.DaysOverdue(tier, &last)
			if overdue != -until {
				t.Fatalf("tier %q, %d days ago: overdue %d != -until %d", tier, daysAgo, overdue, until)
			}
		}
		until := sched.DaysUntilFollowUp(tier, nil)
		if sched.DaysOverdue(tier, nil) != -until {
			t.Fatalf("tier %q, nil contact: identity violated", tier)
		}
	}
}

func TestDaysUntilFollowUpRoundsUp(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	sched := fixedScheduler(now)

	// Contacted 13 days and 12 hours before a 14-day cadence: half a
	// day remains, which still counts as one day out.
	last := now.Add(-13*24*time.Hour - 12*time.Hour)
	if days := sched.DaysUntilFollowUp(TierPlatinum, &last); days != 1 {
		t.Fatalf("DaysUntilFollowUp = %d, want 1", days)
	}
}

func TestFollowUpOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	sched := fixedScheduler(now)

	last := now.AddDate(0, 0, -20)
	if overdue := sched.DaysOverdue(TierPlatinum, &last); overdue != 6 {
		t.Fatalf("DaysOverdue = %d, want 6", overdue)
	}
	if !sched.NeedsFollowUp(TierPlatinum, &last) {
		t.Fatalf("overdue client should need follow-up")
	}
}

func TestDaysSinceNeverNegative(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	sched := fixedScheduler(now)

	future := now.Add(48 * time.Hour)
	if days := sched.DaysSince(future); days != 0 {
		t.Fatalf("DaysSince(future) = %d, want 0", days)
	}
	past := now.Add(-49 * time.Hour)
	if days := sched.DaysSince(past); days != 2 {
		t.Fatalf("DaysSince(49h ago) = %d, want 2", days)
	}
}
