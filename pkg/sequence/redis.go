package sequence

import (
	"context"
	"fmt"

	"github.com/angelmondragon/homeservices-backend/pkg/redis"
)

// RedisAllocator backs counters with Redis INCR.
type RedisAllocator struct {
	store redis.CounterStore
}

func NewRedisAllocator(store redis.CounterStore) (*RedisAllocator, error) {
	if store == nil {
		return nil, fmt.Errorf("redis counter store required")
	}
	return &RedisAllocator{store: store}, nil
}

func (a *RedisAllocator) Next(ctx context.Context, name string) (int64, error) {
	n, err := a.store.Incr(ctx, a.store.CounterKey(name))
	if err != nil {
		return 0, fmt.Errorf("incr sequence %s: %w", name, err)
	}
	return n, nil
}

func (a *RedisAllocator) Seed(ctx context.Context, name string, floor int64) error {
	if floor <= 0 {
		return nil
	}
	if _, err := a.store.RaiseCounter(ctx, a.store.CounterKey(name), floor); err != nil {
		return fmt.Errorf("seed sequence %s: %w", name, err)
	}
	return nil
}
