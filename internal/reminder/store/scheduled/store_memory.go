// Package scheduled persists planned reminder rows.
package scheduled

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"idmonitor/internal/reminder"
	"idmonitor/pkg/platform/sentinel"
)

// InMemoryStore keeps scheduled reminders in process memory. It backs unit
// tests and single-node development; consistency semantics match the
// PostgreSQL store.
type InMemoryStore struct {
	mu        sync.RWMutex
	reminders map[uuid.UUID]reminder.ScheduledReminder
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{reminders: make(map[uuid.UUID]reminder.ScheduledReminder)}
}

func (s *InMemoryStore) InsertMany(_ context.Context, rows []reminder.ScheduledReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.reminders[r.ID] = r
	}
	return nil
}

// DeleteUnsent removes the pending plan for a document. Sent rows are history
// and survive rescheduling.
func (s *InMemoryStore) DeleteUnsent(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.reminders {
		if r.DocumentID == documentID && r.Pending() {
			delete(s.reminders, id)
		}
	}
	return nil
}

// FindDue returns up to limit pending reminders scheduled at or before now,
// oldest first.
func (s *InMemoryStore) FindDue(_ context.Context, now time.Time, limit int) ([]reminder.ScheduledReminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []reminder.ScheduledReminder
	for _, r := range s.reminders {
		if r.Pending() && !r.ScheduledFor.After(now) {
			due = append(due, r)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledFor.Before(due[j].ScheduledFor)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// MarkSent claims a pending reminder. Returns sentinel.ErrAlreadyClaimed when
// the row is gone or was already claimed by a concurrent run, so callers can
// skip dispatch instead of double-sending.
func (s *InMemoryStore) MarkSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || !r.Pending() {
		return sentinel.ErrAlreadyClaimed
	}
	r.SentAt = &sentAt
	s.reminders[id] = r
	return nil
}

func (s *InMemoryStore) ListByDocument(_ context.Context, documentID string) ([]reminder.ScheduledReminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []reminder.ScheduledReminder
	for _, r := range s.reminders {
		if r.DocumentID == documentID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ScheduledFor.Before(rows[j].ScheduledFor)
	})
	return rows, nil
}

// DeleteByDocument removes every reminder for a document, sent or not. Used
// when the owning document is deleted.
func (s *InMemoryStore) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.reminders {
		if r.DocumentID == documentID {
			delete(s.reminders, id)
		}
	}
	return nil
}
