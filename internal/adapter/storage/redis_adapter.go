package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/electronic-shop/internal/config"
	"github.com/rl1809/electronic-shop/internal/core/domain"
	"github.com/rl1809/electronic-shop/internal/port"
)

const stockKeyPrefix = "stock:"

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

var _ port.StockCache = (*RedisAdapter)(nil)

// NewRedisAdapter caches stock levels for ttl; zero ttl keeps them until invalidated.
func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, ttl: ttl}
}

// OpenRedis returns a pinged client or an error wrapping domain.ErrConnectionUnavailable.
func OpenRedis(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("%w: ping redis: %w", domain.ErrConnectionUnavailable, err)
	}
	return rdb, nil
}

func stockKey(productID string) string {
	return stockKeyPrefix + productID
}

func (r *RedisAdapter) GetStock(ctx context.Context, productID string) (int, bool, error) {
	stock, err := r.client.Get(ctx, stockKey(productID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stock, true, nil
}

// CacheStock uses SETNX so a populate racing an invalidation never overwrites a newer value.
func (r *RedisAdapter) CacheStock(ctx context.Context, productID string, stock int) error {
	return r.client.SetNX(ctx, stockKey(productID), stock, r.ttl).Err()
}

func (r *RedisAdapter) InvalidateStock(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = stockKey(id)
	}
	return r.client.Del(ctx, keys...).Err()
}
