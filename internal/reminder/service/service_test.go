package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"idmonitor/internal/reminder"
	configstore "idmonitor/internal/reminder/store/config"
	"idmonitor/internal/reminder/store/scheduled"
	dErrors "idmonitor/pkg/domain-errors"
	"idmonitor/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	reminders *scheduled.InMemoryStore
	configs   *configstore.InMemoryStore
	svc       *Service
	ctx       context.Context
	today     time.Time
}

func (s *ServiceSuite) SetupTest() {
	s.reminders = scheduled.NewInMemoryStore()
	s.configs = configstore.NewInMemoryStore()
	s.svc = New(slog.New(slog.DiscardHandler), s.reminders, s.configs, NewShardedTxRunner(), nil, nil)
	s.today = time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.today)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) storedConfig(kind *reminder.DocumentKind, mutate func(*reminder.Config)) reminder.Config {
	cfg := reminder.DefaultConfig("user-1")
	cfg.Kind = kind
	if mutate != nil {
		mutate(&cfg)
	}
	stored, err := s.configs.Upsert(s.ctx, cfg)
	s.Require().NoError(err)
	return stored
}

func (s *ServiceSuite) TestResolveConfig() {
	passport := reminder.KindPassport

	s.Run("falls back to system default", func() {
		cfg, err := s.svc.ResolveConfig(s.ctx, "user-1", &passport)
		s.Require().NoError(err)
		s.Equal(uuid.Nil, cfg.ID, "default config must not be persisted by resolution")
		s.Equal([]int{365, 180, 90}, cfg.EarlyReminderDays)
		s.True(cfg.EmailEnabled)
		s.False(cfg.SMSEnabled)
	})

	s.Run("prefers global config over default", func() {
		global := s.storedConfig(nil, func(c *reminder.Config) { c.UrgentPeriodDays = 45 })

		cfg, err := s.svc.ResolveConfig(s.ctx, "user-1", &passport)
		s.Require().NoError(err)
		s.Equal(global.ID, cfg.ID)
		s.Equal(45, cfg.UrgentPeriodDays)
	})

	s.Run("prefers kind-specific config over global", func() {
		s.storedConfig(nil, func(c *reminder.Config) { c.UrgentPeriodDays = 45 })
		specific := s.storedConfig(&passport, func(c *reminder.Config) { c.UrgentPeriodDays = 60 })

		cfg, err := s.svc.ResolveConfig(s.ctx, "user-1", &passport)
		s.Require().NoError(err)
		s.Equal(specific.ID, cfg.ID)
		s.Equal(60, cfg.UrgentPeriodDays)
	})

	s.Run("nil kind resolves the global config", func() {
		global := s.storedConfig(nil, nil)
		s.storedConfig(&passport, nil)

		cfg, err := s.svc.ResolveConfig(s.ctx, "user-1", nil)
		s.Require().NoError(err)
		s.Equal(global.ID, cfg.ID)
	})
}

func (s *ServiceSuite) TestUpdateConfig() {
	s.Run("persists a valid config", func() {
		cfg := reminder.DefaultConfig("user-1")
		cfg.UrgentPeriodDays = 45

		stored, err := s.svc.UpdateConfig(s.ctx, cfg)
		s.Require().NoError(err)
		s.NotEqual(uuid.Nil, stored.ID)

		found, err := s.configs.FindByUserAndKind(s.ctx, "user-1", nil)
		s.Require().NoError(err)
		s.Equal(45, found.UrgentPeriodDays)
	})

	s.Run("rejects invariant violation and leaves store unchanged", func() {
		before := s.storedConfig(nil, nil)

		bad := reminder.DefaultConfig("user-1")
		bad.CriticalPeriodDays = bad.UrgentPeriodDays + 1

		_, err := s.svc.UpdateConfig(s.ctx, bad)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeInvariantViolation))

		after, err := s.configs.FindByUserAndKind(s.ctx, "user-1", nil)
		s.Require().NoError(err)
		s.Equal(before.UrgentPeriodDays, after.UrgentPeriodDays)
		s.Equal(before.CriticalPeriodDays, after.CriticalPeriodDays)
	})
}

func (s *ServiceSuite) TestScheduleForDocument() {
	expiresAt := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	s.Run("persists the generated plan", func() {
		// 15 days out, default config: two weekly urgent reminders.
		count, err := s.svc.ScheduleForDocument(s.ctx, "doc-1", "user-1", expiresAt, reminder.KindPassport)
		s.Require().NoError(err)
		s.Equal(2, count)

		rows, err := s.reminders.ListByDocument(s.ctx, "doc-1")
		s.Require().NoError(err)
		s.Len(rows, 2)
		for _, r := range rows {
			s.Equal("user-1", r.UserID)
			s.Equal(reminder.TypeUrgentReminder, r.Type)
			s.True(r.Pending())
		}
	})

	s.Run("materializes the default config on first use", func() {
		_, err := s.svc.ScheduleForDocument(s.ctx, "doc-1", "user-1", expiresAt, reminder.KindPassport)
		s.Require().NoError(err)

		cfg, err := s.configs.FindByUserAndKind(s.ctx, "user-1", nil)
		s.Require().NoError(err)
		s.NotEqual(uuid.Nil, cfg.ID)
		s.Equal([]int{365, 180, 90}, cfg.EarlyReminderDays)
	})

	s.Run("rescheduling replaces the pending plan without duplicates", func() {
		_, err := s.svc.ScheduleForDocument(s.ctx, "doc-1", "user-1", expiresAt, reminder.KindPassport)
		s.Require().NoError(err)
		count, err := s.svc.ScheduleForDocument(s.ctx, "doc-1", "user-1", expiresAt, reminder.KindPassport)
		s.Require().NoError(err)
		s.Equal(2, count)

		rows, err := s.reminders.ListByDocument(s.ctx, "doc-1")
		s.Require().NoError(err)
		s.Len(rows, 2, "exactly one pending plan after rescheduling")
	})

	s.Run("rescheduling keeps sent history", func() {
		_, err := s.svc.ScheduleForDocument(s.ctx, "doc-1", "user-1", expiresAt, reminder.KindPassport)
		s.Require().NoError(err)

		due, err := s.reminders.FindDue(s.ctx, s.today, 1)
		s.Require().NoError(err)
		s.Require().Len(due, 1)
		s.Require().NoError(s.reminders.MarkSent(s.ctx, due[0].ID, s.today))

		_, err = s.svc.ScheduleForDocument(s.ctx, "doc-1", "user-1", expiresAt, reminder.KindPassport)
		s.Require().NoError(err)

		rows, err := s.reminders.ListByDocument(s.ctx, "doc-1")
		s.Require().NoError(err)
		sent := 0
		for _, r := range rows {
			if !r.Pending() {
				sent++
			}
		}
		s.Equal(1, sent, "sent rows survive rescheduling as history")
		s.Len(rows, 3)
	})

	s.Run("an empty plan is a successful result", func() {
		// Expires today: no events, but the rewrite still clears stale rows.
		count, err := s.svc.ScheduleForDocument(s.ctx, "doc-2", "user-1", s.today, reminder.KindPassport)
		s.Require().NoError(err)
		s.Zero(count)
	})
}

func (s *ServiceSuite) TestDeleteForDocument() {
	expiresAt := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	_, err := s.svc.ScheduleForDocument(s.ctx, "doc-1", "user-1", expiresAt, reminder.KindPassport)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteForDocument(s.ctx, "doc-1"))

	rows, err := s.reminders.ListByDocument(s.ctx, "doc-1")
	s.Require().NoError(err)
	s.Empty(rows)
}
