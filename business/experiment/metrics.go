package experiment

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	VariantAssignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "experiment_variant_assignments_total",
			Help: "Count of variant assignments by test and variant.",
		},
		[]string{"test", "variant"},
	)

	ConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "experiment_conversions_total",
			Help: "Count of recorded conversions by variant.",
		},
		[]string{"variant"},
	)
)

func init() {
	prometheus.MustRegister(
		VariantAssignmentsTotal,
		ConversionsTotal,
	)
}
