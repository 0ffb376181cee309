package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func fixedClockStore(maxIdentities int) (*MemoryStore, *time.Time) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore(maxIdentities)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSequentialWindow(t *testing.T) {
	store, now := fixedClockStore(0)
	limiter := New(store)
	policy := Policy{Limit: 5, Interval: 60 * time.Second}
	ctx := context.Background()

	windowStart := *now
	for i, wantRemaining := range []int{4, 3, 2, 1, 0} {
		res, err := limiter.Allow(ctx, "client-a", policy)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
		if !res.Allowed {
			t.Fatalf("call %d should be admitted", i+1)
		}
		if res.Remaining != wantRemaining {
			t.Fatalf("call %d: Remaining = %d, want %d", i+1, res.Remaining, wantRemaining)
		}
		*now = now.Add(time.Second)
	}

	res, err := limiter.Allow(ctx, "client-a", policy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Allowed {
		t.Fatalf("6th call inside the window should be rejected")
	}
	if res.Remaining != 0 {
		t.Fatalf("rejected call Remaining = %d, want 0", res.Remaining)
	}
	if want := windowStart.Add(60 * time.Second); !res.ResetAt.Equal(want) {
		t.Fatalf("ResetAt = %v, want %v", res.ResetAt, want)
	}

	// Once the first timestamp leaves the window a new request fits.
	*now = windowStart.Add(61 * time.Second)
	res, err = limiter.Allow(ctx, "client-a", policy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Allowed {
		t.Fatalf("call after the window elapsed should be admitted")
	}
}

func TestBoundaryTimestampSurvivesFullWindow(t *testing.T) {
	store, now := fixedClockStore(0)
	ctx := context.Background()
	interval := time.Minute

	first := *now
	res, err := store.Take(ctx, "k", 1, interval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Allowed {
		t.Fatalf("first call should be admitted")
	}

	// Exactly one interval later the first timestamp is still inside
	// the window.
	*now = first.Add(interval)
	res, err = store.Take(ctx, "k", 1, interval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Allowed {
		t.Fatalf("call exactly at the window boundary should be rejected")
	}

	*now = first.Add(interval + time.Nanosecond)
	res, err = store.Take(ctx, "k", 1, interval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Allowed {
		t.Fatalf("call past the window boundary should be admitted")
	}
}

func TestIdentitiesAreIndependent(t *testing.T) {
	store, _ := fixedClockStore(0)
	limiter := New(store)
	policy := Policy{Limit: 2, Interval: time.Minute}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limiter.Allow(ctx, "client-a", policy)
	}
	res, err := limiter.Allow(ctx, "client-b", policy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Allowed {
		t.Fatalf("exhausting one identity must not affect another")
	}
}

func TestInvalidPolicyRejected(t *testing.T) {
	store, _ := fixedClockStore(0)
	limiter := New(store)
	ctx := context.Background()

	if _, err := limiter.Allow(ctx, "k", Policy{Limit: 0, Interval: time.Minute}); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("zero limit: got %v, want ErrInvalidPolicy", err)
	}
	if _, err := limiter.Allow(ctx, "k", Policy{Limit: 5, Interval: 0}); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("zero interval: got %v, want ErrInvalidPolicy", err)
	}
	if _, err := limiter.Allow(ctx, "k", Policy{Limit: -1, Interval: time.Minute}); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("negative limit: got %v, want ErrInvalidPolicy", err)
	}
}

func TestConcurrentAdmissionNeverExceedsLimit(t *testing.T) {
	store := NewMemoryStore(0)
	limiter := New(store)
	policy := Policy{Limit: 50, Interval: time.Minute}
	ctx := context.Background()

	const attempts = 400
	var admitted int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := limiter.Allow(ctx, "shared", policy)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if res.Allowed {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if admitted > int64(policy.Limit) {
		t.Fatalf("admitted %d requests, limit is %d", admitted, policy.Limit)
	}
	if admitted != int64(policy.Limit) {
		t.Fatalf("admitted %d requests, expected exactly %d within one window", admitted, policy.Limit)
	}
}

func TestLRUEvictionBoundsIdentities(t *testing.T) {
	store, _ := fixedClockStore(2)
	ctx := context.Background()

	store.Take(ctx, "a", 5, time.Minute)
	store.Take(ctx, "b", 5, time.Minute)
	store.Take(ctx, "a", 5, time.Minute) // refresh a
	store.Take(ctx, "c", 5, time.Minute) // evicts b

	if n := store.Len(); n != 2 {
		t.Fatalf("tracked identities = %d, want 2", n)
	}

	// b starts over with a fresh log after eviction.
	res, err := store.Take(ctx, "b", 1, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Allowed || res.Remaining != 0 {
		t.Fatalf("re-added identity should get a fresh window: %+v", res)
	}
}

func TestDefaultPolicies(t *testing.T) {
	cases := []struct {
		category Category
		limit    int
		interval time.Duration
	}{
		{CategoryRead, 60, time.Minute},
		{CategoryWrite, 30, time.Minute},
		{CategorySearch, 30, time.Minute},
		{CategoryImport, 5, time.Hour},
		{CategoryAuth, 10, time.Minute},
	}
	for _, tc := range cases {
		p := PolicyFor(tc.category)
		if p.Limit != tc.limit || p.Interval != tc.interval {
			t.Fatalf("PolicyFor(%q) = %+v, want %d/%v", tc.category, p, tc.limit, tc.interval)
		}
	}

	// Unknown categories get the conservative write policy.
	if p := PolicyFor(Category("bogus")); p != PolicyFor(CategoryWrite) {
		t.Fatalf("unknown category policy = %+v", p)
	}
}

func TestResetAtTracksOldestSurviving(t *testing.T) {
	store, now := fixedClockStore(0)
	ctx := context.Background()
	interval := time.Minute

	first := *now
	store.Take(ctx, "k", 3, interval)
	*now = now.Add(10 * time.Second)
	res, err := store.Take(ctx, "k", 3, interval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := first.Add(interval); !res.ResetAt.Equal(want) {
		t.Fatalf("ResetAt = %v, want oldest+interval %v", res.ResetAt, want)
	}
}
