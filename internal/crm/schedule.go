package crm

import (
	"math"
	"time"
)

// Scheduler computes follow-up due dates from tier cadence and the last
// contact timestamp. All arithmetic happens in UTC; day differences are
// elapsed wall-clock duration, while the cadence step itself advances
// by calendar days.
type Scheduler struct {
	// Now is replaceable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewScheduler() *Scheduler {
	return &Scheduler{Now: time.Now}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// NextFollowUp returns when the client is next due. A never-contacted
// client is due immediately.
func (s *Scheduler) NextFollowUp(tier Tier, lastContact *time.Time) time.Time {
	if lastContact == nil {
		return s.now()
	}
	return lastContact.UTC().AddDate(0, 0, tier.CadenceDays())
}

// NeedsFollowUp reports whether the follow-up is due now. The boundary
// is inclusive: due exactly now means due.
func (s *Scheduler) NeedsFollowUp(tier Tier, lastContact *time.Time) bool {
	if lastContact == nil {
		return true
	}
	return !s.NextFollowUp(tier, lastContact).After(s.now())
}

// DaysUntilFollowUp returns whole days until the next follow-up,
// rounded up. Negative values mean overdue; a never-contacted client
// returns 0.
func (s *Scheduler) DaysUntilFollowUp(tier Tier, lastContact *time.Time) int {
	if lastContact == nil {
		return 0
	}
	diff := s.NextFollowUp(tier, lastContact).Sub(s.now())
	return int(math.Ceil(diff.Hours() / 24))
}

// DaysOverdue is exactly the negation of DaysUntilFollowUp.
func (s *Scheduler) DaysOverdue(tier Tier, lastContact *time.Time) int {
	return -s.DaysUntilFollowUp(tier, lastContact)
}

// DaysSince returns whole elapsed days from t to now, never negative.
func (s *Scheduler) DaysSince(t time.Time) int {
	diff := s.now().Sub(t.UTC())
	if diff < 0 {
		return 0
	}
	return int(diff.Hours() / 24)
}
