package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type cachedProducts struct {
	next   port.ProductRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached serves product lookups from Redis and falls back to next on a miss.
// Redis failures degrade to uncached lookups. Not-found answers are never cached.
func NewCached(next port.ProductRepository, rdb redis.Cmdable, ttl time.Duration, l *zap.Logger) port.ProductRepository {
	return &cachedProducts{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: l,
	}
}

func cacheKey(productID uuid.UUID) string {
	return "product:" + productID.String()
}

func (c *cachedProducts) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	key := cacheKey(productID)

	val, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var product domain.Product
		if err := json.Unmarshal(val, &product); err == nil {
			return product, nil
		}
		logger.Warn(ctx, c.logger, "dropping corrupt cache entry", zap.String("key", key))
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			logger.Warn(ctx, c.logger, "product cache delete failed", zap.String("key", key), zap.Error(err))
		}
	case !errors.Is(err, redis.Nil):
		logger.Warn(ctx, c.logger, "product cache read failed", zap.String("key", key), zap.Error(err))
	}

	product, err := c.next.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	data, err := json.Marshal(product)
	if err != nil {
		return product, nil
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn(ctx, c.logger, "product cache write failed", zap.String("key", key), zap.Error(err))
	}

	return product, nil
}
