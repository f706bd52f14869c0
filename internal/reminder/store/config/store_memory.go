// Package config persists per-user reminder policies.
package config

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"idmonitor/internal/reminder"
	"idmonitor/pkg/platform/sentinel"
)

// kindKey collapses the optional document kind into a map key; the empty
// string is the user's global config.
func kindKey(kind *reminder.DocumentKind) string {
	if kind == nil {
		return ""
	}
	return kind.String()
}

// InMemoryStore keeps reminder configs in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	configs map[string]map[string]reminder.Config
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{configs: make(map[string]map[string]reminder.Config)}
}

// FindByUserAndKind looks up the config row matching (userID, kind) exactly.
// A nil kind addresses the user's global config. Fallback across kinds is the
// resolver's job, not the store's.
func (s *InMemoryStore) FindByUserAndKind(_ context.Context, userID string, kind *reminder.DocumentKind) (reminder.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKind, ok := s.configs[userID]
	if !ok {
		return reminder.Config{}, sentinel.ErrNotFound
	}
	cfg, ok := byKind[kindKey(kind)]
	if !ok {
		return reminder.Config{}, sentinel.ErrNotFound
	}
	return cfg, nil
}

// Upsert creates or replaces the config row for (cfg.UserID, cfg.Kind) and
// returns the stored row with identifiers and timestamps filled in.
func (s *InMemoryStore) Upsert(_ context.Context, cfg reminder.Config) (reminder.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKind, ok := s.configs[cfg.UserID]
	if !ok {
		byKind = make(map[string]reminder.Config)
		s.configs[cfg.UserID] = byKind
	}

	now := time.Now().UTC()
	if existing, ok := byKind[kindKey(cfg.Kind)]; ok {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
	} else {
		cfg.ID = uuid.New()
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	byKind[kindKey(cfg.Kind)] = cfg
	return cfg, nil
}
