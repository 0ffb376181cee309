// Package ratelimit implements a sliding-window request throttle keyed
// by caller identity. Each identity carries a time-ordered log of
// request timestamps; a request is admitted while fewer than the limit
// survive inside the trailing interval.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLimitExceeded marks a rejected request; callers may retry
	// once the Result's ResetAt has passed.
	ErrLimitExceeded = errors.New("rate limit exceeded")

	ErrInvalidPolicy = errors.New("rate limit policy must have positive limit and interval")
)

// Category names a mutation class with a fixed policy. The pairs are
// policy constants, not negotiable per request.
type Category string

const (
	CategoryRead   Category = "read"
	CategoryWrite  Category = "write"
	CategorySearch Category = "search"
	CategoryImport Category = "import"
	CategoryAuth   Category = "auth"
)

type Policy struct {
	Limit    int
	Interval time.Duration
}

var defaultPolicies = map[Category]Policy{
	CategoryRead:   {Limit: 60, Interval: time.Minute},
	CategoryWrite:  {Limit: 30, Interval: time.Minute},
	CategorySearch: {Limit: 30, Interval: time.Minute},
	CategoryImport: {Limit: 5, Interval: time.Hour},
	CategoryAuth:   {Limit: 10, Interval: time.Minute},
}

// PolicyFor returns the fixed policy for a category. Unknown categories
// fall back to the write policy.
func PolicyFor(c Category) Policy {
	if p, ok := defaultPolicies[c]; ok {
		return p
	}
	return defaultPolicies[CategoryWrite]
}

// Result reports one admission decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the oldest surviving timestamp leaves the window.
	ResetAt time.Time
}

// Store persists per-identity timestamp logs. Take must prune, count
// and (on admission) record atomically with respect to a given key.
type Store interface {
	Take(ctx context.Context, key string, limit int, interval time.Duration) (Result, error)
}

// Limiter is the single piece of shared mutable state in the engine
// core; created once per process and injected, never a package global.
type Limiter struct {
	store Store
}

func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow records a request for identity under the policy and decides
// admission. Rejection is reported in the Result, not as an error;
// errors mean the store itself failed or the policy is invalid.
func (l *Limiter) Allow(ctx context.Context, identity string, p Policy) (Result, error) {
	if p.Limit <= 0 || p.Interval <= 0 {
		return Result{}, ErrInvalidPolicy
	}
	return l.store.Take(ctx, identity, p.Limit, p.Interval)
}
