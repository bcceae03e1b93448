package mw

import (
	"net/http"
	"time"

	"github.com/assadsharif/chatkit-core/internal/metrics"
)

// statusRecorder captures the status code a handler wrote so the metrics
// middleware can classify the request after the fact, since http.Handler
// gives no return value to inspect.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Metrics records every request's latency and outcome against the shared
// Tracker (§4.5, §5 "mutated only via ... a short critical section").
func Metrics(tracker *metrics.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			tracker.RecordRequest(time.Since(start), rec.status >= 400)
		})
	}
}
