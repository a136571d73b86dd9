package repository

import (
	"context"
	"testing"
	"time"

	"seat-reservation/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOrderRepository struct {
	orders map[string]*entity.Order
	calls  int
}

func (s *stubOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	s.calls++
	return s.orders[orderID], nil
}

func TestCachedOrderRepository_NilClientIsPassThrough(t *testing.T) {
	next := &stubOrderRepository{}
	assert.Same(t, next, NewCachedOrderRepository(next, nil, time.Minute, zap.NewNop()))
}

func TestCachedOrderRepository_RedisDownFallsThrough(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	order := &entity.Order{OrderID: "R0MGXK3F2Q7K9ZDAB", Seats: []string{"A1"}}
	next := &stubOrderRepository{orders: map[string]*entity.Order{order.OrderID: order}}
	repo := NewCachedOrderRepository(next, rdb, time.Minute, zap.NewNop())

	got, err := repo.FindByOrderID(context.Background(), order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order, got)

	got, err = repo.FindByOrderID(context.Background(), "R000000000MISS0")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 2, next.calls)
}
