package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const defaultMaxIdentities = 10000

// MemoryStore keeps per-identity timestamp logs in process memory. The
// number of tracked identities is bounded: least-recently-used
// identities are evicted first when the store is full, trading
// precision for bounded memory. Requests for different identities do
// not contend beyond the brief map/LRU lookup.
type MemoryStore struct {
	mu            sync.Mutex
	maxIdentities int
	entries       map[string]*memoryEntry
	lru           *list.List // front = most recently used

	now func() time.Time
}

type memoryEntry struct {
	mu      sync.Mutex
	key     string
	log     []time.Time
	elem    *list.Element
	evicted bool
}

func NewMemoryStore(maxIdentities int) *MemoryStore {
	if maxIdentities <= 0 {
		maxIdentities = defaultMaxIdentities
	}
	return &MemoryStore{
		maxIdentities: maxIdentities,
		entries:       make(map[string]*memoryEntry),
		lru:           list.New(),
		now:           time.Now,
	}
}

func (s *MemoryStore) Take(_ context.Context, key string, limit int, interval time.Duration) (Result, error) {
	for {
		ent := s.acquire(key)

		ent.mu.Lock()
		if ent.evicted {
			// Lost the race against LRU eviction; the identity was
			// re-inserted under a fresh entry.
			ent.mu.Unlock()
			continue
		}
		res := s.take(ent, limit, interval)
		ent.mu.Unlock()
		return res, nil
	}
}

// acquire finds or creates the entry for key, refreshes its LRU
// position and evicts the coldest identity if the store is over
// capacity. Eviction marks the entry under its own lock so an in-flight
// Take never appends to an orphaned log.
func (s *MemoryStore) acquire(key string) *memoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		s.lru.MoveToFront(ent.elem)
		return ent
	}

	ent := &memoryEntry{key: key}
	ent.elem = s.lru.PushFront(ent)
	s.entries[key] = ent

	for len(s.entries) > s.maxIdentities {
		back := s.lru.Back()
		if back == nil {
			break
		}
		victim := back.Value.(*memoryEntry)
		victim.mu.Lock()
		victim.evicted = true
		victim.mu.Unlock()
		s.lru.Remove(back)
		delete(s.entries, victim.key)
	}
	return ent
}

// take runs the sliding-window decision over one locked entry.
func (s *MemoryStore) take(ent *memoryEntry, limit int, interval time.Duration) Result {
	now := s.now()
	cutoff := now.Add(-interval)

	// The log is time-ordered; drop everything strictly older than the
	// cutoff. A timestamp exactly one interval old still counts.
	keep := 0
	for keep < len(ent.log) && ent.log[keep].Before(cutoff) {
		keep++
	}
	if keep > 0 {
		ent.log = append(ent.log[:0], ent.log[keep:]...)
	}

	if len(ent.log) >= limit {
		return Result{
			Allowed:   false,
			Limit:     limit,
			Remaining: 0,
			ResetAt:   ent.log[0].Add(interval),
		}
	}

	ent.log = append(ent.log, now)
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(ent.log),
		ResetAt:   ent.log[0].Add(interval),
	}
}

// Len reports the number of tracked identities.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
