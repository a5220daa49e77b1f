package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pricewise/business/pricing"
	"pricewise/domain"
	"pricewise/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// CachedMarketRepository is a cache-aside decorator over the postgres
// benchmark repository. Benchmark snapshots change on the ingestion job's
// cadence, so a short TTL is enough.
type CachedMarketRepository struct {
	client *redis.Client
	inner  pricing.MarketDataRepository
	ttl    time.Duration
}

func NewCachedMarketRepository(client *redis.Client, inner pricing.MarketDataRepository, ttl time.Duration) *CachedMarketRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedMarketRepository{
		client: client,
		inner:  inner,
		ttl:    ttl,
	}
}

func benchmarkKey(segment string) string {
	return fmt.Sprintf("market:benchmark:%s", segment)
}

func (r *CachedMarketRepository) LatestBySegment(ctx context.Context, segment string) (domain.MarketBenchmark, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.MarketBenchmark{}, false, fmt.Errorf("context error: %w", err)
	}

	key := benchmarkKey(segment)

	raw, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var bench domain.MarketBenchmark
		if err := json.Unmarshal(raw, &bench); err == nil {
			return bench, true, nil
		}
		// a corrupt entry falls through to the source of truth
		logger.Warn("dropping unreadable benchmark cache entry", "segment", segment)
		_ = r.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("benchmark cache read failed", "segment", segment, "error", err)
	}

	bench, found, err := r.inner.LatestBySegment(ctx, segment)
	if err != nil || !found {
		return bench, found, err
	}

	if data, err := json.Marshal(bench); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			logger.Warn("benchmark cache write failed", "segment", segment, "error", err)
		}
	}

	return bench, true, nil
}
