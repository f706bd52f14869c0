package scheduled

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"idmonitor/internal/reminder"
	"idmonitor/pkg/platform/sentinel"
	"idmonitor/pkg/platform/tx"
)

// Schema creates the scheduled reminders table. Applied by migrations and by
// integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS scheduled_reminders (
	id            UUID PRIMARY KEY,
	user_id       TEXT NOT NULL,
	document_id   TEXT NOT NULL,
	scheduled_for TIMESTAMPTZ NOT NULL,
	reminder_type TEXT NOT NULL,
	message       TEXT NOT NULL,
	sent_at       TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_scheduled_reminders_document_pending
	ON scheduled_reminders (document_id) WHERE sent_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_scheduled_reminders_due
	ON scheduled_reminders (scheduled_for) WHERE sent_at IS NULL;
`

// PostgresStore persists scheduled reminders in PostgreSQL.
// This store is pure I/O; plan computation and claim ordering belong to the
// service and processor layers. Mutating methods participate in a
// transaction when the context carries one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed scheduled reminder store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertMany(ctx context.Context, rows []reminder.ScheduledReminder) error {
	if len(rows) == 0 {
		return nil
	}
	q := tx.Resolve(ctx, s.db)
	query := `
		INSERT INTO scheduled_reminders (id, user_id, document_id, scheduled_for, reminder_type, message, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, r := range rows {
		_, err := q.ExecContext(ctx, query,
			r.ID,
			r.UserID,
			r.DocumentID,
			r.ScheduledFor,
			string(r.Type),
			r.Message,
			r.SentAt,
			r.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert scheduled reminder: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) DeleteUnsent(ctx context.Context, documentID string) error {
	q := tx.Resolve(ctx, s.db)
	_, err := q.ExecContext(ctx,
		`DELETE FROM scheduled_reminders WHERE document_id = $1 AND sent_at IS NULL`,
		documentID,
	)
	if err != nil {
		return fmt.Errorf("delete unsent reminders: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindDue(ctx context.Context, now time.Time, limit int) ([]reminder.ScheduledReminder, error) {
	query := `
		SELECT id, user_id, document_id, scheduled_for, reminder_type, message, sent_at, created_at
		FROM scheduled_reminders
		WHERE scheduled_for <= $1 AND sent_at IS NULL
		ORDER BY scheduled_for ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("find due reminders: %w", err)
	}
	defer rows.Close()

	var due []reminder.ScheduledReminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due reminders: %w", err)
	}
	return due, nil
}

// MarkSent claims a pending reminder with an atomic conditional update. The
// WHERE sent_at IS NULL guard guarantees a row is claimed by at most one
// concurrent processor run.
func (s *PostgresStore) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_reminders SET sent_at = $1 WHERE id = $2 AND sent_at IS NULL`,
		sentAt, id,
	)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrAlreadyClaimed
	}
	return nil
}

func (s *PostgresStore) ListByDocument(ctx context.Context, documentID string) ([]reminder.ScheduledReminder, error) {
	query := `
		SELECT id, user_id, document_id, scheduled_for, reminder_type, message, sent_at, created_at
		FROM scheduled_reminders
		WHERE document_id = $1
		ORDER BY scheduled_for ASC
	`
	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list reminders by document: %w", err)
	}
	defer rows.Close()

	var out []reminder.ScheduledReminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders by document: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteByDocument(ctx context.Context, documentID string) error {
	q := tx.Resolve(ctx, s.db)
	_, err := q.ExecContext(ctx,
		`DELETE FROM scheduled_reminders WHERE document_id = $1`,
		documentID,
	)
	if err != nil {
		return fmt.Errorf("delete reminders by document: %w", err)
	}
	return nil
}

func scanReminder(rows *sql.Rows) (reminder.ScheduledReminder, error) {
	var (
		r            reminder.ScheduledReminder
		reminderType string
		sentAt       sql.NullTime
	)
	err := rows.Scan(&r.ID, &r.UserID, &r.DocumentID, &r.ScheduledFor, &reminderType, &r.Message, &sentAt, &r.CreatedAt)
	if err != nil {
		return reminder.ScheduledReminder{}, fmt.Errorf("scan scheduled reminder: %w", err)
	}
	r.Type = reminder.Type(reminderType)
	if sentAt.Valid {
		t := sentAt.Time
		r.SentAt = &t
	}
	return r, nil
}
