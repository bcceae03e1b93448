package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestTracker_SnapshotReflectsRequestsAndErrors(t *testing.T) {
	tr := New(prometheus.NewRegistry(), time.Now().Add(-5*time.Second))

	tr.RecordRequest(10*time.Millisecond, false)
	tr.RecordRequest(20*time.Millisecond, true)
	tr.RecordRateLimited()

	snap := tr.Snapshot()
	if snap.TotalRequests != 2 {
		t.Errorf("total = %d, want 2", snap.TotalRequests)
	}
	if snap.ErrorCount != 1 {
		t.Errorf("errors = %d, want 1", snap.ErrorCount)
	}
	if snap.RateLimitedCount != 1 {
		t.Errorf("rate limited = %d, want 1", snap.RateLimitedCount)
	}
	if snap.MeanResponseMillis != 15 {
		t.Errorf("mean = %v, want 15", snap.MeanResponseMillis)
	}
	if snap.UptimeSeconds <= 0 {
		t.Errorf("uptime should be positive, got %v", snap.UptimeSeconds)
	}
}

func TestTracker_RollingWindowCapsAtN(t *testing.T) {
	tr := New(prometheus.NewRegistry(), time.Now())

	for i := 0; i < windowSize+10; i++ {
		tr.RecordRequest(100*time.Millisecond, false)
	}
	for i := 0; i < 10; i++ {
		tr.RecordRequest(0, false)
	}

	snap := tr.Snapshot()
	if snap.TotalRequests != int64(windowSize+20) {
		t.Errorf("total requests = %d, want %d", snap.TotalRequests, windowSize+20)
	}
	// The last 10 zero-latency requests should pull the windowed mean well
	// below 100ms even though total requests exceeds the window size.
	if snap.MeanResponseMillis >= 100 {
		t.Errorf("expected rolling mean to reflect only the last %d samples, got %v", windowSize, snap.MeanResponseMillis)
	}
}
