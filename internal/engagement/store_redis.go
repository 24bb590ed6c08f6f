package engagement

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"bizintel/pkg/domain"
)

// Redis key prefix for per-business counter hashes. Fields are the action
// names ("view", "click").
const counterKeyPrefix = "engagement:"

// RedisCounterStore keeps counters in a Redis hash per business. HINCRBY is
// atomic, so increments from concurrent instances are never lost.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Incr(ctx context.Context, id domain.BusinessID, action domain.EngagementAction) error {
	key := counterKeyPrefix + id.String()
	if err := s.client.HIncrBy(ctx, key, string(action), 1).Err(); err != nil {
		return fmt.Errorf("incr engagement counter: %w", err)
	}
	return nil
}

func (s *RedisCounterStore) Get(ctx context.Context, id domain.BusinessID) (int64, int64, error) {
	key := counterKeyPrefix + id.String()
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("read engagement counters: %w", err)
	}
	views, _ := strconv.ParseInt(fields[string(domain.ActionView)], 10, 64)
	clicks, _ := strconv.ParseInt(fields[string(domain.ActionClick)], 10, 64)
	return views, clicks, nil
}
