//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certifly/pkg/testutil/containers"
)

type RedisBucketSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
}

func TestRedisBucketSuite(t *testing.T) {
	suite.Run(t, new(RedisBucketSuite))
}

func (s *RedisBucketSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = NewRedisBucketStore(s.redis.Client)
}

func (s *RedisBucketSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBucketSuite) TestAllowUpToLimit() {
	ctx := context.Background()
	for i := range 3 {
		res, err := s.store.Allow(ctx, "rl:auth:10.0.0.1", 3, time.Minute)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(2-i, res.Remaining)
	}

	res, err := s.store.Allow(ctx, "rl:auth:10.0.0.1", 3, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.True(res.ResetAt.After(time.Now()))

	ttl, err := s.redis.Client.PTTL(ctx, "rl:auth:10.0.0.1").Result()
	s.Require().NoError(err)
	s.Positive(ttl, "bucket keys expire on their own")
}

func (s *RedisBucketSuite) TestWindowSlides() {
	ctx := context.Background()
	base := time.Now()
	s.store.now = func() time.Time { return base }
	defer func() { s.store.now = time.Now }()

	_, err := s.store.Allow(ctx, "k", 1, time.Second)
	s.Require().NoError(err)
	res, err := s.store.Allow(ctx, "k", 1, time.Second)
	s.Require().NoError(err)
	s.False(res.Allowed)

	s.store.now = func() time.Time { return base.Add(1500 * time.Millisecond) }
	res, err = s.store.Allow(ctx, "k", 1, time.Second)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *RedisBucketSuite) TestReset() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "k", 1, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, "k"))

	res, err := s.store.Allow(ctx, "k", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
}
