package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/assadsharif/chatkit-core/internal/config"
	"github.com/assadsharif/chatkit-core/internal/store"
)

// fakeStore records CheckAndBumpRate calls and returns a canned decision,
// so these tests exercise the Limiter's policy lookup and process-local
// shedding without a database.
type fakeStore struct {
	store.Store
	decision store.RateDecision
	err      error
	calls    int
}

func (f *fakeStore) CheckAndBumpRate(ctx context.Context, subject, action string, max int, window time.Duration, now time.Time) (store.RateDecision, error) {
	f.calls++
	return f.decision, f.err
}

func TestLimiter_UnrecognizedActionIsUnlimited(t *testing.T) {
	fs := &fakeStore{decision: store.RateDecision{Allowed: true}}
	l := New(fs, map[string]config.RateLimitPolicy{"chat": {MaxRequests: 10, WindowSeconds: 60}}, nil)

	decision, err := l.Check(context.Background(), "user-1", "unknown-action")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Error("expected unrecognized action to be unlimited")
	}
	if fs.calls != 0 {
		t.Errorf("store should not be consulted for unlimited actions, got %d calls", fs.calls)
	}
}

func TestLimiter_DelegatesToStoreForKnownAction(t *testing.T) {
	fs := &fakeStore{decision: store.RateDecision{Allowed: false, RetryAfter: 5 * time.Second}}
	l := New(fs, map[string]config.RateLimitPolicy{"chat": {MaxRequests: 10, WindowSeconds: 60}}, nil)

	decision, err := l.Check(context.Background(), "user-1", "chat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed {
		t.Error("expected store decision to be honored")
	}
	if fs.calls != 1 {
		t.Errorf("expected 1 store call, got %d", fs.calls)
	}
}

func TestLimiter_ShedsBurstsBeforeReachingStore(t *testing.T) {
	fs := &fakeStore{decision: store.RateDecision{Allowed: true}}
	l := New(fs, map[string]config.RateLimitPolicy{"chat": {MaxRequests: 1000, WindowSeconds: 60}}, nil)

	// Exhaust the process-local token bucket without letting it refill.
	for i := 0; i < shedderBurst; i++ {
		if _, err := l.Check(context.Background(), "user-1", "chat"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	decision, err := l.Check(context.Background(), "user-1", "chat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed {
		t.Error("expected the burst shedder to reject once its bucket is empty")
	}
	if fs.calls != shedderBurst {
		t.Errorf("store should not be consulted once shed, got %d calls, want %d", fs.calls, shedderBurst)
	}
}

func TestLimiter_DistinctSubjectsHaveIndependentBuckets(t *testing.T) {
	fs := &fakeStore{decision: store.RateDecision{Allowed: true}}
	l := New(fs, map[string]config.RateLimitPolicy{"chat": {MaxRequests: 1000, WindowSeconds: 60}}, nil)

	for i := 0; i < shedderBurst; i++ {
		if _, err := l.Check(context.Background(), "user-1", "chat"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	decision, err := l.Check(context.Background(), "user-2", "chat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Error("a different subject should have its own untouched bucket")
	}
}
