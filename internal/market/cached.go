package market

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/cache"
	"github.com/Rinde17/investerra-app/internal/metrics"
)

const cacheKeyPrefix = "market:"

// CachedEstimator caches known prices by locality slug. Unknown results are
// not cached so a later lookup can succeed once listings appear.
type CachedEstimator struct {
	next    PriceEstimator
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewCachedEstimator(next PriceEstimator, c cache.Cache, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *CachedEstimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEstimator{next: next, cache: c, ttl: ttl, metrics: m, logger: logger}
}

func (c *CachedEstimator) Estimate(ctx context.Context, city, zip string) (float64, bool) {
	key := cacheKeyPrefix + Slug(city, zip)

	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("market cache get failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		if price, perr := strconv.ParseFloat(string(raw), 64); perr == nil {
			c.metrics.RecordCacheHit()
			return price, true
		}
		c.logger.Warn("corrupt market cache entry", zap.String("key", key))
	}
	c.metrics.RecordCacheMiss()

	price, known := c.next.Estimate(ctx, city, zip)
	if !known {
		return 0, false
	}

	if err := c.cache.Set(ctx, key, []byte(strconv.FormatFloat(price, 'f', -1, 64)), c.ttl); err != nil {
		c.logger.Warn("market cache set failed", zap.String("key", key), zap.Error(err))
	}
	return price, true
}

func (c *CachedEstimator) Invalidate(ctx context.Context, city, zip string) error {
	return c.cache.Delete(ctx, cacheKeyPrefix+Slug(city, zip))
}
