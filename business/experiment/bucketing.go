package experiment

import (
	"fmt"
	"hash/fnv"

	"pricewise/domain"
)

// bucketValue deterministically maps a (customer, test) pair into [0, 1).
// The hash function is fixed for the lifetime of the module: changing it
// mid-experiment would silently reassign customers.
func bucketValue(customerID string, testID uint64) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", customerID, testID)))
	return float64(h.Sum32()) / float64(1<<32)
}

// pickVariant walks the variants in their stored order, accumulating traffic
// allocation, and returns the first variant whose cumulative share covers the
// bucket value. The last variant absorbs floating-point remainder at the
// boundary.
func pickVariant(variants []domain.PriceTestVariant, bucket float64) *domain.PriceTestVariant {
	if len(variants) == 0 {
		return nil
	}

	cumulative := 0.0
	for i := range variants {
		cumulative += variants[i].TrafficAllocation / 100
		if cumulative >= bucket {
			return &variants[i]
		}
	}

	return &variants[len(variants)-1]
}
