package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"idmonitor/internal/reminder"
	"idmonitor/pkg/platform/sentinel"
)

// Schema mirrors the columns this engine reads from tables owned by the
// application layer. Integration tests create them standalone.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id    TEXT PRIMARY KEY,
	email TEXT NOT NULL
);
`

// PostgresStore reads documents and user emails from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (Document, error) {
	var (
		doc  Document
		kind string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, kind, expires_at FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.UserID, &kind, &doc.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, sentinel.ErrNotFound
		}
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	doc.Kind = reminder.DocumentKind(kind)
	return doc, nil
}

func (s *PostgresStore) EmailAddress(ctx context.Context, userID string) (string, error) {
	var email string
	err := s.db.QueryRowContext(ctx,
		`SELECT email FROM users WHERE id = $1`,
		userID,
	).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get user email: %w", err)
	}
	return email, nil
}
