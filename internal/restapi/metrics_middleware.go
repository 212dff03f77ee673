package restapi

import (
	"net/http"
	"strconv"
	"time"

	"bikedash.nycbikeshare.org/internal/metrics"
)

// MetricsHandler records request counts and latency per route. Routes are
// labelled by the matched mux pattern rather than the raw URL, which keeps
// label cardinality bounded. A nil Metrics yields a pass-through wrapper so
// callers never have to branch.
func MetricsHandler(m *metrics.Metrics) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &metricsResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}

			m.HTTPRequestsTotal.
				WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).
				Inc()
			m.HTTPRequestDuration.
				WithLabelValues(r.Method, path).
				Observe(time.Since(start).Seconds())
		})
	}
}

// metricsResponseWriter captures the status code the handler committed.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
