package crm

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"atelier-crm/internal/database/models"
)

// VIPAtRiskThresholdDays flags Platinum clients who have not purchased
// within this many days. Provisional default.
var VIPAtRiskThresholdDays = 60

// Snapshot is the already-fetched state the engine scores. The engine
// never mutates it and performs no I/O.
type Snapshot struct {
	Clients  []models.Client
	Watches  []models.Watch
	Waitlist []models.WaitlistEntry
}

type MatchAlert struct {
	ClientID        int64   `json:"clientId"`
	ClientName      string  `json:"clientName"`
	ClientTier      Tier    `json:"clientTier"`
	WatchID         int64   `json:"watchId"`
	WatchModel      string  `json:"watchModel"`
	WatchTier       int32   `json:"watchTier"`
	DaysWaiting     int     `json:"daysWaiting"`
	AllocationScore float64 `json:"allocationScore"`
}

type FollowUpAlert struct {
	ClientID    int64      `json:"clientId"`
	ClientName  string     `json:"clientName"`
	Tier        Tier       `json:"tier"`
	WatchModel  *string    `json:"watchModel"`
	DaysWaiting *int       `json:"daysWaiting"`
	DaysOverdue int        `json:"daysOverdue"`
	LastContact *time.Time `json:"lastContact"`
}

type VIPAlert struct {
	ClientID          int64           `json:"clientId"`
	ClientName        string          `json:"clientName"`
	Tier              Tier            `json:"tier"`
	DaysSincePurchase int             `json:"daysSincePurchase"`
	LifetimeSpend     decimal.Decimal `json:"lifetimeSpend"`
	LastPurchaseDate  time.Time       `json:"lastPurchaseDate"`
}

type Summary struct {
	TotalAlerts    int `json:"totalAlerts"`
	PerfectMatches int `json:"perfectMatches"`
	GoodMatches    int `json:"goodMatches"`
	NeedsFollowup  int `json:"needsFollowup"`
	AtRiskVips     int `json:"atRiskVips"`
}

// AlertFeed is a pure computation output, recomputed per request and
// owned by the caller.
type AlertFeed struct {
	PerfectMatches []MatchAlert    `json:"perfectMatches"`
	GoodMatches    []MatchAlert    `json:"goodMatches"`
	NeedsFollowup  []FollowUpAlert `json:"needsFollowup"`
	AtRiskVips     []VIPAlert      `json:"atRiskVips"`
	Summary        Summary         `json:"summary"`
}

// Engine pairs waitlist entries against inventory and buckets the
// results into the four alert categories. Pure over the snapshot; safe
// for any number of concurrent callers.
type Engine struct {
	sched *Scheduler
}

func NewEngine(sched *Scheduler) *Engine {
	if sched == nil {
		sched = NewScheduler()
	}
	return &Engine{sched: sched}
}

func (e *Engine) Scheduler() *Scheduler {
	return e.sched
}

// Classify runs the full pipeline over one snapshot. Individual bad
// records are excluded rather than failing the batch.
func (e *Engine) Classify(snap Snapshot) AlertFeed {
	feed := AlertFeed{
		PerfectMatches: []MatchAlert{},
		GoodMatches:    []MatchAlert{},
		NeedsFollowup:  []FollowUpAlert{},
		AtRiskVips:     []VIPAlert{},
	}

	clientsByID := make(map[int64]*models.Client, len(snap.Clients))
	for i := range snap.Clients {
		clientsByID[snap.Clients[i].ID] = &snap.Clients[i]
	}

	waitlistByClient := make(map[int64]*models.WaitlistEntry, len(snap.Waitlist))

	for i := range snap.Waitlist {
		entry := &snap.Waitlist[i]
		if !entry.IsActive {
			continue
		}
		client, ok := clientsByID[entry.ClientID]
		if !ok {
			// Referenced client absent from the snapshot: skip the
			// entry, not the batch.
			continue
		}
		if _, seen := waitlistByClient[entry.ClientID]; !seen {
			waitlistByClient[entry.ClientID] = entry
		}

		tier, err := ParseTier(client.Tier)
		if err != nil {
			continue
		}
		daysWaiting := e.sched.DaysSince(entry.AddedAt)
		priority, err := PriorityScore(tier, daysWaiting, client.LifetimeSpend)
		if err != nil {
			continue
		}

		for j := range snap.Watches {
			watch := &snap.Watches[j]
			if watch.AvailableQuantity <= 0 {
				continue
			}
			delta := TierDelta(tier.Rank(), int(watch.Tier))
			score := MatchScore(delta, priority)
			alert := MatchAlert{
				ClientID:        client.ID,
				ClientName:      client.Name,
				ClientTier:      tier,
				WatchID:         watch.ID,
				WatchModel:      watch.Model,
				WatchTier:       watch.Tier,
				DaysWaiting:     daysWaiting,
				AllocationScore: score,
			}
			switch ClassifyMatch(delta, score) {
			case BandPerfect:
				feed.PerfectMatches = append(feed.PerfectMatches, alert)
			case BandGood:
				feed.GoodMatches = append(feed.GoodMatches, alert)
			}
		}
	}

	inFollowup := make(map[int64]bool)
	for i := range snap.Clients {
		client := &snap.Clients[i]
		tier, err := ParseTier(client.Tier)
		if err != nil {
			continue
		}
		overdue := e.sched.DaysOverdue(tier, client.LastContactDate)
		if overdue <= 0 {
			continue
		}
		alert := FollowUpAlert{
			ClientID:    client.ID,
			ClientName:  client.Name,
			Tier:        tier,
			DaysOverdue: overdue,
			LastContact: client.LastContactDate,
		}
		if entry, ok := waitlistByClient[client.ID]; ok {
			alert.WatchModel = entry.DesiredModel
			days := e.sched.DaysSince(entry.AddedAt)
			alert.DaysWaiting = &days
		}
		feed.NeedsFollowup = append(feed.NeedsFollowup, alert)
		inFollowup[client.ID] = true
	}
	sort.SliceStable(feed.NeedsFollowup, func(i, j int) bool {
		return feed.NeedsFollowup[i].DaysOverdue > feed.NeedsFollowup[j].DaysOverdue
	})

	for i := range snap.Clients {
		client := &snap.Clients[i]
		tier, err := ParseTier(client.Tier)
		if err != nil || tier != TierPlatinum {
			continue
		}
		if client.LastPurchaseDate == nil || inFollowup[client.ID] {
			continue
		}
		daysSince := e.sched.DaysSince(*client.LastPurchaseDate)
		if daysSince <= VIPAtRiskThresholdDays {
			continue
		}
		feed.AtRiskVips = append(feed.AtRiskVips, VIPAlert{
			ClientID:          client.ID,
			ClientName:        client.Name,
			Tier:              tier,
			DaysSincePurchase: daysSince,
			LifetimeSpend:     client.LifetimeSpend,
			LastPurchaseDate:  *client.LastPurchaseDate,
		})
	}
	// Lifetime spend as a proxy for business risk.
	sort.SliceStable(feed.AtRiskVips, func(i, j int) bool {
		return feed.AtRiskVips[i].LifetimeSpend.GreaterThan(feed.AtRiskVips[j].LifetimeSpend)
	})

	feed.Summary = Summary{
		PerfectMatches: len(feed.PerfectMatches),
		GoodMatches:    len(feed.GoodMatches),
		NeedsFollowup:  len(feed.NeedsFollowup),
		AtRiskVips:     len(feed.AtRiskVips),
	}
	feed.Summary.TotalAlerts = feed.Summary.PerfectMatches + feed.Summary.GoodMatches +
		feed.Summary.NeedsFollowup + feed.Summary.AtRiskVips

	return feed
}
