package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the price optimization HTTP handler
	OptimizeLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_optimize_latency_seconds",
		Help:    "Latency of the price optimization handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of variant assignment requests served
	AssignmentRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricing_assignment_requests_total",
		Help: "Total number of variant assignment requests",
	})
)

func Init() {
	prometheus.MustRegister(
		OptimizeLatency,
		AssignmentRequests,
	)
}
