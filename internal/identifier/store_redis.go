package identifier

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bizintel/pkg/domain"
	"bizintel/pkg/platform/sentinel"
)

const (
	// Redis key prefix for per-day issuance counters.
	sequenceKeyPrefix = "biid:seq:"

	// Counters outlive their issuance day by a safety margin, then expire.
	sequenceKeyTTL = 72 * time.Hour
)

// RedisSequenceStore allocates sequences via atomic INCR so concurrent
// issuers across instances never collide.
type RedisSequenceStore struct {
	client *redis.Client
}

func NewRedisSequenceStore(client *redis.Client) *RedisSequenceStore {
	return &RedisSequenceStore{client: client}
}

func (s *RedisSequenceStore) Next(ctx context.Context, dateKey string) (int, error) {
	key := sequenceKeyPrefix + dateKey
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr issuance sequence: %w", err)
	}
	if n == 1 {
		// First allocation of the day sets the expiry; a failure here only
		// delays cleanup, it cannot double-issue.
		s.client.Expire(ctx, key, sequenceKeyTTL)
	}
	if n > int64(domain.MaxDailySequence) {
		// The counter has moved past the space; numbers beyond the bound are
		// never handed out, so the sequence state stays uncorrupted.
		return 0, sentinel.ErrExhausted
	}
	return int(n), nil
}
