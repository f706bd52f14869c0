//go:build integration

package config_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"idmonitor/internal/reminder"
	configstore "idmonitor/internal/reminder/store/config"
	"idmonitor/pkg/platform/sentinel"
	"idmonitor/pkg/testutil/containers"
)

type PostgresConfigSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *configstore.PostgresStore
}

func TestPostgresConfigSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresConfigSuite))
}

func (s *PostgresConfigSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), configstore.Schema)
	s.store = configstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresConfigSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "reminder_configs")
	s.Require().NoError(err)
}

func (s *PostgresConfigSuite) TestUpsertRoundTrip() {
	ctx := context.Background()

	cfg := reminder.DefaultConfig("user-1")
	stored, err := s.store.Upsert(ctx, cfg)
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, stored.ID)
	s.Equal([]int{365, 180, 90}, stored.EarlyReminderDays)
	s.Nil(stored.Kind)

	found, err := s.store.FindByUserAndKind(ctx, "user-1", nil)
	s.Require().NoError(err)
	s.Equal(stored.ID, found.ID)
	s.Equal(reminder.FrequencyWeekly, found.UrgentFrequency)
	s.True(found.EmailEnabled)
	s.False(found.SMSEnabled)
}

// TestGlobalRowUniqueness verifies NULLS NOT DISTINCT: a user has at most one
// global row, upserted in place.
func (s *PostgresConfigSuite) TestGlobalRowUniqueness() {
	ctx := context.Background()

	first, err := s.store.Upsert(ctx, reminder.DefaultConfig("user-1"))
	s.Require().NoError(err)

	update := reminder.DefaultConfig("user-1")
	update.UrgentPeriodDays = 45
	second, err := s.store.Upsert(ctx, update)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(45, second.UrgentPeriodDays)

	var count int
	err = s.postgres.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM reminder_configs WHERE user_id = $1`, "user-1").Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *PostgresConfigSuite) TestKindSpecificLookup() {
	ctx := context.Background()
	passport := reminder.KindPassport

	_, err := s.store.Upsert(ctx, reminder.DefaultConfig("user-1"))
	s.Require().NoError(err)

	specific := reminder.DefaultConfig("user-1")
	specific.Kind = &passport
	specific.UrgentPeriodDays = 60
	_, err = s.store.Upsert(ctx, specific)
	s.Require().NoError(err)

	found, err := s.store.FindByUserAndKind(ctx, "user-1", &passport)
	s.Require().NoError(err)
	s.Require().NotNil(found.Kind)
	s.Equal(passport, *found.Kind)
	s.Equal(60, found.UrgentPeriodDays)

	global, err := s.store.FindByUserAndKind(ctx, "user-1", nil)
	s.Require().NoError(err)
	s.Nil(global.Kind)
	s.Equal(30, global.UrgentPeriodDays)

	visa := reminder.KindVisa
	_, err = s.store.FindByUserAndKind(ctx, "user-1", &visa)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
