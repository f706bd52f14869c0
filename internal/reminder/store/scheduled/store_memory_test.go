package scheduled

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"idmonitor/internal/reminder"
	"idmonitor/pkg/platform/sentinel"
)

type ScheduledStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func (s *ScheduledStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.now = time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
}

func TestScheduledStoreSuite(t *testing.T) {
	suite.Run(t, new(ScheduledStoreSuite))
}

func (s *ScheduledStoreSuite) newReminder(documentID string, scheduledFor time.Time) reminder.ScheduledReminder {
	return reminder.ScheduledReminder{
		ID:           uuid.New(),
		UserID:       "user-1",
		DocumentID:   documentID,
		ScheduledFor: scheduledFor,
		Type:         reminder.TypeEarlyWarning,
		Message:      "Your PASSPORT expires in 90 days (2025-04-05)",
		CreatedAt:    s.now,
	}
}

func (s *ScheduledStoreSuite) TestFindDue() {
	overdue := s.newReminder("doc-1", s.now.Add(-48*time.Hour))
	dueNow := s.newReminder("doc-1", s.now)
	future := s.newReminder("doc-1", s.now.Add(time.Hour))
	s.Require().NoError(s.store.InsertMany(s.ctx, []reminder.ScheduledReminder{future, dueNow, overdue}))

	s.Run("returns pending rows at or before now, oldest first", func() {
		due, err := s.store.FindDue(s.ctx, s.now, 10)
		s.Require().NoError(err)
		s.Require().Len(due, 2)
		s.Equal(overdue.ID, due[0].ID)
		s.Equal(dueNow.ID, due[1].ID)
	})

	s.Run("honors the limit", func() {
		due, err := s.store.FindDue(s.ctx, s.now, 1)
		s.Require().NoError(err)
		s.Require().Len(due, 1)
		s.Equal(overdue.ID, due[0].ID)
	})

	s.Run("excludes sent rows", func() {
		s.Require().NoError(s.store.MarkSent(s.ctx, overdue.ID, s.now))

		due, err := s.store.FindDue(s.ctx, s.now, 10)
		s.Require().NoError(err)
		s.Require().Len(due, 1)
		s.Equal(dueNow.ID, due[0].ID)
	})
}

func (s *ScheduledStoreSuite) TestMarkSent() {
	r := s.newReminder("doc-1", s.now)
	s.Require().NoError(s.store.InsertMany(s.ctx, []reminder.ScheduledReminder{r}))

	s.Run("claims a pending reminder exactly once", func() {
		s.Require().NoError(s.store.MarkSent(s.ctx, r.ID, s.now))

		err := s.store.MarkSent(s.ctx, r.ID, s.now)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyClaimed)
	})

	s.Run("rejects unknown reminders", func() {
		err := s.store.MarkSent(s.ctx, uuid.New(), s.now)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyClaimed)
	})
}

func (s *ScheduledStoreSuite) TestDeleteUnsent() {
	sent := s.newReminder("doc-1", s.now.Add(-time.Hour))
	pending := s.newReminder("doc-1", s.now.Add(time.Hour))
	other := s.newReminder("doc-2", s.now.Add(time.Hour))
	s.Require().NoError(s.store.InsertMany(s.ctx, []reminder.ScheduledReminder{sent, pending, other}))
	s.Require().NoError(s.store.MarkSent(s.ctx, sent.ID, s.now))

	s.Require().NoError(s.store.DeleteUnsent(s.ctx, "doc-1"))

	rows, err := s.store.ListByDocument(s.ctx, "doc-1")
	s.Require().NoError(err)
	s.Require().Len(rows, 1, "sent history survives")
	s.Equal(sent.ID, rows[0].ID)

	rows, err = s.store.ListByDocument(s.ctx, "doc-2")
	s.Require().NoError(err)
	s.Len(rows, 1, "other documents untouched")
}

func (s *ScheduledStoreSuite) TestDeleteByDocument() {
	sent := s.newReminder("doc-1", s.now.Add(-time.Hour))
	pending := s.newReminder("doc-1", s.now.Add(time.Hour))
	s.Require().NoError(s.store.InsertMany(s.ctx, []reminder.ScheduledReminder{sent, pending}))
	s.Require().NoError(s.store.MarkSent(s.ctx, sent.ID, s.now))

	s.Require().NoError(s.store.DeleteByDocument(s.ctx, "doc-1"))

	rows, err := s.store.ListByDocument(s.ctx, "doc-1")
	s.Require().NoError(err)
	s.Empty(rows, "sent and pending rows both removed")
}
