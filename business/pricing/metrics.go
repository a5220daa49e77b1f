package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_recommendations_total",
			Help: "Count of optimization runs by outcome (recommended, below_threshold, insufficient_data).",
		},
		[]string{"outcome"},
	)

	PriceApplicationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_price_applications_total",
			Help: "Count of applied price changes by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		RecommendationsTotal,
		PriceApplicationsTotal,
	)
}
