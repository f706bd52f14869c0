//go:build integration

package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"idmonitor/internal/reminder"
	configstore "idmonitor/internal/reminder/store/config"
	"idmonitor/pkg/platform/sentinel"
	"idmonitor/pkg/testutil/containers"
)

type CachedStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	inner *configstore.InMemoryStore
	store *configstore.CachedStore
	ctx   context.Context
}

func TestCachedStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedStoreSuite))
}

func (s *CachedStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.ctx = context.Background()
}

func (s *CachedStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.inner = configstore.NewInMemoryStore()
	s.store = configstore.NewCachedStore(s.inner, s.redis.Client, time.Minute)
}

func (s *CachedStoreSuite) TestReadThrough() {
	stored, err := s.inner.Upsert(s.ctx, reminder.DefaultConfig("user-1"))
	s.Require().NoError(err)

	// First read populates the cache.
	found, err := s.store.FindByUserAndKind(s.ctx, "user-1", nil)
	s.Require().NoError(err)
	s.Equal(stored.ID, found.ID)

	exists, err := s.redis.Client.Exists(s.ctx, "reminder_config:user-1:global").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)

	// Second read is served from the cache even if the inner row changes
	// underneath (staleness bounded by the TTL).
	update := reminder.DefaultConfig("user-1")
	update.UrgentPeriodDays = 45
	_, err = s.inner.Upsert(s.ctx, update)
	s.Require().NoError(err)

	cached, err := s.store.FindByUserAndKind(s.ctx, "user-1", nil)
	s.Require().NoError(err)
	s.Equal(30, cached.UrgentPeriodDays)
}

func (s *CachedStoreSuite) TestUpsertInvalidates() {
	_, err := s.store.Upsert(s.ctx, reminder.DefaultConfig("user-1"))
	s.Require().NoError(err)

	_, err = s.store.FindByUserAndKind(s.ctx, "user-1", nil)
	s.Require().NoError(err)

	update := reminder.DefaultConfig("user-1")
	update.UrgentPeriodDays = 45
	_, err = s.store.Upsert(s.ctx, update)
	s.Require().NoError(err)

	found, err := s.store.FindByUserAndKind(s.ctx, "user-1", nil)
	s.Require().NoError(err)
	s.Equal(45, found.UrgentPeriodDays, "update must drop the cached row")
}

func (s *CachedStoreSuite) TestMissIsNotCached() {
	_, err := s.store.FindByUserAndKind(s.ctx, "user-1", nil)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	stored, err := s.inner.Upsert(s.ctx, reminder.DefaultConfig("user-1"))
	s.Require().NoError(err)

	found, err := s.store.FindByUserAndKind(s.ctx, "user-1", nil)
	s.Require().NoError(err)
	s.Equal(stored.ID, found.ID)
}

func (s *CachedStoreSuite) TestCorruptEntryFallsThrough() {
	stored, err := s.inner.Upsert(s.ctx, reminder.DefaultConfig("user-1"))
	s.Require().NoError(err)

	s.Require().NoError(s.redis.Client.Set(s.ctx, "reminder_config:user-1:global", "not-json", time.Minute).Err())

	found, err := s.store.FindByUserAndKind(s.ctx, "user-1", nil)
	s.Require().NoError(err)
	s.Equal(stored.ID, found.ID)
}
