package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"udonmap/internal/platform/metrics"
)

// Throttle applies a process-wide token bucket in front of all routes. This
// is load shedding for the whole surface, distinct from the per-device
// submission cooldown enforced inside the pipeline.
func Throttle(rps float64, burst int, m *metrics.Metrics) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				if m != nil {
					m.Throttled.Inc()
				}
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
