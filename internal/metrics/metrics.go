package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readswap",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "readswap",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "readswap",
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		},
	)

	loanTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readswap",
			Name:      "loan_transitions_total",
			Help:      "Loan status transitions by target status.",
		},
		[]string{"to"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, httpInFlight, loanTransitions)
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route, status string, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// TrackInFlight marks a request as started and returns the matching
// done func.
func TrackInFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// IncLoanTransition counts a successful loan status transition.
func IncLoanTransition(to string) {
	loanTransitions.WithLabelValues(to).Inc()
}
