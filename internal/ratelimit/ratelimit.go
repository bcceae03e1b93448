// Package ratelimit implements the Rate Limiter component (§4.6): a
// fixed-window counter per (subject, action) backed by the Store, guarded by
// a cheap process-local token-bucket layer that sheds egregious bursts
// before they ever reach a transaction. The token-bucket layer is adapted
// from the visitor-map rate limiter in tbourn-chatbot's
// internal/http/middleware/ratelimit.go (same idle-eviction idea, no Gin
// dependency since this component sits below the HTTP layer).
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/assadsharif/chatkit-core/internal/config"
	"github.com/assadsharif/chatkit-core/internal/store"
)

// shedderBurst and shedderRPS bound how fast any single subject can even
// attempt to acquire the Store's row lock, independent of the action-level
// policy enforced there. This exists to protect the database from a caller
// hammering the endpoint faster than any window could reset, not to replace
// the fixed-window decision.
const (
	shedderRPS   = 50
	shedderBurst = 20
	visitorTTL   = 10 * time.Minute
)

// visitor holds one subject's token bucket and its last-seen time, so idle
// buckets can be evicted and memory stays bounded under many distinct
// subjects.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter enforces §4.6's per-action fixed-window policy through the Store,
// after a process-local token-bucket pre-check.
type Limiter struct {
	store   store.Store
	clock   func() time.Time
	actions map[string]config.RateLimitPolicy

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
}

// New constructs a Limiter. clock defaults to time.Now when nil; tests pass
// a fake clock to control fixed-window boundaries deterministically.
func New(s store.Store, actions map[string]config.RateLimitPolicy, clock func() time.Time) *Limiter {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Limiter{
		store:    s,
		clock:    clock,
		actions:  actions,
		visitors: make(map[string]*visitor),
	}
}

// Check reports whether subject may perform action now, bumping its counter
// when allowed. An unrecognized action is treated as unlimited: the spec's
// closed action set (chat, save, personalize) is enforced by the handler
// layer routing only those three actions through Check.
func (l *Limiter) Check(ctx context.Context, subject, action string) (store.RateDecision, error) {
	policy, ok := l.actions[action]
	if !ok {
		return store.RateDecision{Allowed: true}, nil
	}

	if !l.shed(subject, action) {
		// The process-local bucket is empty: reject without touching the
		// Store. Retry-After is conservative (one token's replenishment time).
		return store.RateDecision{Allowed: false, RetryAfter: time.Second}, nil
	}

	now := l.clock()
	window := time.Duration(policy.WindowSeconds) * time.Second
	decision, err := l.store.CheckAndBumpRate(ctx, subject, action, policy.MaxRequests, window, now)
	if err != nil {
		return store.RateDecision{}, fmt.Errorf("ratelimit: check: %w", err)
	}
	return decision, nil
}

func (l *Limiter) shed(subject, action string) bool {
	key := subject + ":" + action
	return l.visitorFor(key).Allow()
}

func (l *Limiter) visitorFor(key string) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.lookups++
	if l.lookups >= 5000 {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) >= visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lookups = 0
	}

	if v, ok := l.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}

	lim := rate.NewLimiter(rate.Limit(shedderRPS), shedderBurst)
	l.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}
