//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	cooldownredis "udonmap/internal/ratelimit/store/redis"
	"udonmap/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *cooldownredis.Store
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = cooldownredis.New(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRecordAndLastAccepted() {
	ctx := context.Background()
	at := time.Now().Truncate(time.Millisecond)

	last, err := s.store.LastAccepted(ctx, "submit:device-1")
	s.Require().NoError(err)
	s.True(last.IsZero())

	s.Require().NoError(s.store.Record(ctx, "submit:device-1", at, time.Minute))

	last, err = s.store.LastAccepted(ctx, "submit:device-1")
	s.Require().NoError(err)
	s.True(last.Equal(at))

	// Keys are independent.
	last, err = s.store.LastAccepted(ctx, "submit:device-2")
	s.Require().NoError(err)
	s.True(last.IsZero())
}

func (s *RedisStoreSuite) TestEntryExpiresWithWindow() {
	ctx := context.Background()
	at := time.Now()

	s.Require().NoError(s.store.Record(ctx, "submit:device-1", at, 100*time.Millisecond))
	time.Sleep(200 * time.Millisecond)

	last, err := s.store.LastAccepted(ctx, "submit:device-1")
	s.Require().NoError(err)
	s.True(last.IsZero())
}
