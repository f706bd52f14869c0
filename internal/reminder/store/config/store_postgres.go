package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"idmonitor/internal/reminder"
	"idmonitor/pkg/platform/sentinel"
)

// Schema creates the reminder configs table. NULLS NOT DISTINCT makes the
// user's single global row (document_kind IS NULL) unique as well.
const Schema = `
CREATE TABLE IF NOT EXISTS reminder_configs (
	id                   UUID PRIMARY KEY,
	user_id              TEXT NOT NULL,
	document_kind        TEXT,
	early_reminder_days  INTEGER[] NOT NULL DEFAULT '{}',
	urgent_period_days   INTEGER NOT NULL,
	urgent_frequency     TEXT NOT NULL,
	critical_period_days INTEGER NOT NULL,
	critical_frequency   TEXT NOT NULL,
	email_enabled        BOOLEAN NOT NULL DEFAULT TRUE,
	push_enabled         BOOLEAN NOT NULL DEFAULT TRUE,
	sms_enabled          BOOLEAN NOT NULL DEFAULT FALSE,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE NULLS NOT DISTINCT (user_id, document_kind)
);
`

// PostgresStore persists reminder configs in PostgreSQL.
// This store is pure I/O; validation and fallback resolution belong to the
// service layer.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed config store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const configColumns = `id, user_id, document_kind, early_reminder_days, urgent_period_days, urgent_frequency,
	critical_period_days, critical_frequency, email_enabled, push_enabled, sms_enabled, created_at, updated_at`

func (s *PostgresStore) FindByUserAndKind(ctx context.Context, userID string, kind *reminder.DocumentKind) (reminder.Config, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reminder_configs
		WHERE user_id = $1 AND document_kind IS NOT DISTINCT FROM $2
	`, configColumns)

	cfg, err := scanConfig(s.db.QueryRowContext(ctx, query, userID, kindParam(kind)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reminder.Config{}, sentinel.ErrNotFound
		}
		return reminder.Config{}, fmt.Errorf("find reminder config: %w", err)
	}
	return cfg, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, cfg reminder.Config) (reminder.Config, error) {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	query := fmt.Sprintf(`
		INSERT INTO reminder_configs (id, user_id, document_kind, early_reminder_days, urgent_period_days,
			urgent_frequency, critical_period_days, critical_frequency, email_enabled, push_enabled, sms_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, document_kind) DO UPDATE SET
			early_reminder_days = EXCLUDED.early_reminder_days,
			urgent_period_days = EXCLUDED.urgent_period_days,
			urgent_frequency = EXCLUDED.urgent_frequency,
			critical_period_days = EXCLUDED.critical_period_days,
			critical_frequency = EXCLUDED.critical_frequency,
			email_enabled = EXCLUDED.email_enabled,
			push_enabled = EXCLUDED.push_enabled,
			sms_enabled = EXCLUDED.sms_enabled,
			updated_at = now()
		RETURNING %s
	`, configColumns)

	stored, err := scanConfig(s.db.QueryRowContext(ctx, query,
		cfg.ID,
		cfg.UserID,
		kindParam(cfg.Kind),
		pq.Array(toInt64s(cfg.EarlyReminderDays)),
		cfg.UrgentPeriodDays,
		string(cfg.UrgentFrequency),
		cfg.CriticalPeriodDays,
		string(cfg.CriticalFrequency),
		cfg.EmailEnabled,
		cfg.PushEnabled,
		cfg.SMSEnabled,
	))
	if err != nil {
		return reminder.Config{}, fmt.Errorf("upsert reminder config: %w", err)
	}
	return stored, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (reminder.Config, error) {
	var (
		cfg       reminder.Config
		kind      sql.NullString
		earlyDays pq.Int64Array
		urgentFq  string
		critFq    string
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(
		&cfg.ID,
		&cfg.UserID,
		&kind,
		&earlyDays,
		&cfg.UrgentPeriodDays,
		&urgentFq,
		&cfg.CriticalPeriodDays,
		&critFq,
		&cfg.EmailEnabled,
		&cfg.PushEnabled,
		&cfg.SMSEnabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return reminder.Config{}, err
	}
	if kind.Valid {
		k := reminder.DocumentKind(kind.String)
		cfg.Kind = &k
	}
	cfg.EarlyReminderDays = toInts(earlyDays)
	cfg.UrgentFrequency = reminder.Frequency(urgentFq)
	cfg.CriticalFrequency = reminder.Frequency(critFq)
	cfg.CreatedAt = createdAt
	cfg.UpdatedAt = updatedAt
	return cfg, nil
}

func kindParam(kind *reminder.DocumentKind) any {
	if kind == nil {
		return nil
	}
	return kind.String()
}

func toInt64s(days []int) []int64 {
	out := make([]int64, len(days))
	for i, d := range days {
		out[i] = int64(d)
	}
	return out
}

func toInts(days pq.Int64Array) []int {
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}
