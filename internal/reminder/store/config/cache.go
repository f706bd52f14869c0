package config

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"idmonitor/internal/reminder"
)

// Store is the raw config lookup surface the cache decorates.
type Store interface {
	FindByUserAndKind(ctx context.Context, userID string, kind *reminder.DocumentKind) (reminder.Config, error)
	Upsert(ctx context.Context, cfg reminder.Config) (reminder.Config, error)
}

// CachedStore is a read-through Redis cache in front of a config store.
// Config rows are small, read on every schedule and every dispatched
// reminder, and written rarely, so positive lookups are cached and the key is
// dropped on update. Redis being down degrades to the inner store.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(userID string, kind *reminder.DocumentKind) string {
	k := "global"
	if kind != nil {
		k = kind.String()
	}
	return "reminder_config:" + userID + ":" + k
}

func (s *CachedStore) FindByUserAndKind(ctx context.Context, userID string, kind *reminder.DocumentKind) (reminder.Config, error) {
	key := cacheKey(userID, kind)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cfg reminder.Config
		if err := json.Unmarshal(raw, &cfg); err == nil {
			return cfg, nil
		}
		// Corrupt entry: drop it and fall through to the source of truth.
		_ = s.rdb.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		// Redis unavailable; serve from the inner store without caching.
		return s.inner.FindByUserAndKind(ctx, userID, kind)
	}

	cfg, err := s.inner.FindByUserAndKind(ctx, userID, kind)
	if err != nil {
		return reminder.Config{}, err
	}

	if payload, err := json.Marshal(cfg); err == nil {
		_ = s.rdb.Set(ctx, key, payload, s.ttl).Err()
	}
	return cfg, nil
}

func (s *CachedStore) Upsert(ctx context.Context, cfg reminder.Config) (reminder.Config, error) {
	stored, err := s.inner.Upsert(ctx, cfg)
	if err != nil {
		return reminder.Config{}, err
	}
	_ = s.rdb.Del(ctx, cacheKey(stored.UserID, stored.Kind)).Err()
	return stored, nil
}
