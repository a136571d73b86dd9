package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"seat-reservation/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const orderCachePrefix = "order:"

type cachedOrderRepository struct {
	next OrderRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

// NewCachedOrderRepository puts a Redis read-through cache in front of next.
// Committed orders never change, so entries are only dropped by TTL. Misses
// are not cached. With a nil client next is returned unchanged.
func NewCachedOrderRepository(next OrderRepository, rdb *redis.Client, ttl time.Duration, log *zap.Logger) OrderRepository {
	if rdb == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &cachedOrderRepository{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With(zap.String("repository", "order_cache")),
	}
}

func (r *cachedOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	key := orderCachePrefix + orderID

	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var order entity.Order
		if err := json.Unmarshal(raw, &order); err == nil {
			return &order, nil
		}
		r.log.Warn("Dropping undecodable cache entry", zap.String("order_id", orderID))
		_ = r.rdb.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		r.log.Warn("Order cache read failed", zap.String("order_id", orderID), zap.Error(err))
	}

	order, err := r.next.FindByOrderID(ctx, orderID)
	if err != nil || order == nil {
		return order, err
	}

	if payload, err := json.Marshal(order); err == nil {
		if err := r.rdb.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.log.Warn("Order cache write failed", zap.String("order_id", orderID), zap.Error(err))
		}
	}
	return order, nil
}
