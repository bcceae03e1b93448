// Package metrics implements the in-process operational-signals tracker
// (§4.5): total requests, error count, rate-limit-denied count, a rolling
// window of the last N response times, and service start time. It also
// exposes the same counters to Prometheus (github.com/prometheus/client_golang,
// the scraping stack several repos in the retrieval pack ship) for
// operators who scrape rather than poll the JSON snapshot endpoint.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// windowSize is N in "rolling window of the last N response-times".
const windowSize = 100

// Snapshot is the read-only view returned to the /metrics HTTP handler.
type Snapshot struct {
	TotalRequests      int64
	ErrorCount         int64
	RateLimitedCount   int64
	MeanResponseMillis float64
	UptimeSeconds      float64
}

// Tracker is the process-local metrics store. Safe for concurrent use: all
// mutation happens under a short critical section, per §5's "atomic
// counters or a short critical section" guidance.
type Tracker struct {
	mu          sync.Mutex
	total       int64
	errors      int64
	rateLimited int64
	window      []float64
	windowPos   int
	windowFull  bool
	startedAt   time.Time

	promTotal       prometheus.Counter
	promErrors      prometheus.Counter
	promRateLimited prometheus.Counter
	promLatency     prometheus.Histogram
}

// New constructs a Tracker and registers its Prometheus collectors against
// reg. Pass prometheus.NewRegistry() in tests to avoid collisions with the
// global default registry.
func New(reg prometheus.Registerer, startedAt time.Time) *Tracker {
	t := &Tracker{
		window:    make([]float64, windowSize),
		startedAt: startedAt,
		promTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatkit_requests_total",
			Help: "Total number of HTTP requests handled.",
		}),
		promErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatkit_request_errors_total",
			Help: "Total number of HTTP requests that ended in an error response.",
		}),
		promRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatkit_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter.",
		}),
		promLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatkit_request_duration_seconds",
			Help:    "Request handling duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(t.promTotal, t.promErrors, t.promRateLimited, t.promLatency)
	}
	return t
}

// RecordRequest records one completed request's outcome and latency.
func (t *Tracker) RecordRequest(latency time.Duration, isError bool) {
	t.mu.Lock()
	t.total++
	if isError {
		t.errors++
	}
	t.window[t.windowPos] = float64(latency.Milliseconds())
	t.windowPos = (t.windowPos + 1) % windowSize
	if t.windowPos == 0 {
		t.windowFull = true
	}
	t.mu.Unlock()

	t.promTotal.Inc()
	if isError {
		t.promErrors.Inc()
	}
	t.promLatency.Observe(latency.Seconds())
}

// RecordRateLimited records one 429 decision.
func (t *Tracker) RecordRateLimited() {
	t.mu.Lock()
	t.rateLimited++
	t.mu.Unlock()
	t.promRateLimited.Inc()
}

// Snapshot returns the current counters and rolling mean.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.windowPos
	if t.windowFull {
		n = windowSize
	}
	var mean float64
	if n > 0 {
		var sum float64
		for i := 0; i < n; i++ {
			sum += t.window[i]
		}
		mean = sum / float64(n)
	}

	return Snapshot{
		TotalRequests:      t.total,
		ErrorCount:         t.errors,
		RateLimitedCount:   t.rateLimited,
		MeanResponseMillis: mean,
		UptimeSeconds:      time.Since(t.startedAt).Seconds(),
	}
}
