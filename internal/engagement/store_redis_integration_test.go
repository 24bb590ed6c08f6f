//go:build integration

package engagement_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"bizintel/internal/engagement"
	"bizintel/pkg/domain"
	"bizintel/pkg/testutil/containers"
)

type RedisCounterStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *engagement.RedisCounterStore
}

func TestRedisCounterStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCounterStoreSuite))
}

func (s *RedisCounterStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = engagement.NewRedisCounterStore(s.redis.Client)
}

func (s *RedisCounterStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCounterStoreSuite) TestUnknownBusinessReadsZero() {
	views, clicks, err := s.store.Get(context.Background(), domain.NewBusinessID())
	s.Require().NoError(err)
	s.Zero(views)
	s.Zero(clicks)
}

func (s *RedisCounterStoreSuite) TestIncrAndGet() {
	ctx := context.Background()
	id := domain.NewBusinessID()

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Incr(ctx, id, domain.ActionView))
	}
	s.Require().NoError(s.store.Incr(ctx, id, domain.ActionClick))

	views, clicks, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(int64(3), views)
	s.Equal(int64(1), clicks)

	// Another business's counters are untouched.
	views, clicks, err = s.store.Get(ctx, domain.NewBusinessID())
	s.Require().NoError(err)
	s.Zero(views)
	s.Zero(clicks)
}

// HINCRBY is atomic, so concurrent trackers must not lose increments.
func (s *RedisCounterStoreSuite) TestConcurrentIncrements() {
	ctx := context.Background()
	id := domain.NewBusinessID()
	const goroutines = 20
	const perGoroutine = 25

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				s.NoError(s.store.Incr(ctx, id, domain.ActionView))
			}
		}()
	}
	wg.Wait()

	views, _, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(int64(goroutines*perGoroutine), views)
}
