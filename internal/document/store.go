// Package document exposes the engine's read-only view of documents and
// their owners. Document contents stay encrypted client-side; only the
// identifiers, kind, and expiry date are visible here.
package document

import (
	"context"
	"time"

	"idmonitor/internal/reminder"
)

// Document is the slice of a stored document the reminder engine reads.
type Document struct {
	ID        string
	UserID    string
	Kind      reminder.DocumentKind
	ExpiresAt time.Time
}

// Store reads documents owned elsewhere in the system.
type Store interface {
	GetDocument(ctx context.Context, id string) (Document, error)
}

// UserDirectory resolves a user's email address for the email channel. The
// user record itself belongs to the identity provider's domain.
type UserDirectory interface {
	EmailAddress(ctx context.Context, userID string) (string, error)
}
