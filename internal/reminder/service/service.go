// Package service orchestrates reminder scheduling: configuration
// resolution, plan computation, and the transactional plan rewrite.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"idmonitor/internal/events"
	"idmonitor/internal/reminder"
	"idmonitor/internal/reminder/metrics"
	dErrors "idmonitor/pkg/domain-errors"
	"idmonitor/pkg/platform/sentinel"
	"idmonitor/pkg/requestcontext"
)

// ReminderStore is the slice of reminder persistence the scheduler mutates.
type ReminderStore interface {
	InsertMany(ctx context.Context, rows []reminder.ScheduledReminder) error
	DeleteUnsent(ctx context.Context, documentID string) error
	DeleteByDocument(ctx context.Context, documentID string) error
	ListByDocument(ctx context.Context, documentID string) ([]reminder.ScheduledReminder, error)
}

// ConfigStore persists reminder configs. Lookup is exact-match; the fallback
// chain lives in ResolveConfig.
type ConfigStore interface {
	FindByUserAndKind(ctx context.Context, userID string, kind *reminder.DocumentKind) (reminder.Config, error)
	Upsert(ctx context.Context, cfg reminder.Config) (reminder.Config, error)
}

// TxRunner provides the transactional boundary for the plan rewrite. The key
// is the document ID, so concurrent reschedules of the same document
// serialize while different documents proceed in parallel.
type TxRunner interface {
	RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Service implements scheduling and configuration operations. It holds no
// mutable state; every method is safe for concurrent use.
type Service struct {
	logger    *slog.Logger
	reminders ReminderStore
	configs   ConfigStore
	tx        TxRunner
	metrics   *metrics.Metrics
	events    *events.Publisher
}

func New(
	logger *slog.Logger,
	reminders ReminderStore,
	configs ConfigStore,
	tx TxRunner,
	m *metrics.Metrics,
	publisher *events.Publisher,
) *Service {
	return &Service{
		logger:    logger,
		reminders: reminders,
		configs:   configs,
		tx:        tx,
		metrics:   m,
		events:    publisher,
	}
}

// ResolveConfig returns the effective reminder policy for (userID, kind):
// the kind-specific row if present, else the user's global row, else the
// hardcoded system default. The default is returned, never persisted here —
// the resolver stays read-only.
func (s *Service) ResolveConfig(ctx context.Context, userID string, kind *reminder.DocumentKind) (reminder.Config, error) {
	if kind != nil {
		cfg, err := s.configs.FindByUserAndKind(ctx, userID, kind)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return reminder.Config{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reminder config")
		}
	}

	cfg, err := s.configs.FindByUserAndKind(ctx, userID, nil)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return reminder.Config{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reminder config")
	}

	return reminder.DefaultConfig(userID), nil
}

// UpdateConfig validates and persists a reminder policy. A config violating
// the critical-shorter-than-urgent invariant is rejected and nothing is
// stored.
func (s *Service) UpdateConfig(ctx context.Context, cfg reminder.Config) (reminder.Config, error) {
	if err := cfg.Validate(); err != nil {
		s.metrics.IncrementConfigUpdate("rejected")
		return reminder.Config{}, err
	}

	stored, err := s.configs.Upsert(ctx, cfg)
	if err != nil {
		return reminder.Config{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save reminder config")
	}
	s.metrics.IncrementConfigUpdate("accepted")
	return stored, nil
}

// ScheduleForDocument recomputes and persists the reminder plan for a
// document. Safe to re-invoke: the pending plan is replaced wholesale inside
// one transaction, so a failed rewrite never leaves the document without
// reminders. Sent rows are untouched history. Returns the number of events
// persisted.
func (s *Service) ScheduleForDocument(ctx context.Context, documentID, userID string, expiresAt time.Time, kind reminder.DocumentKind) (int, error) {
	start := time.Now()

	cfg, err := s.ResolveConfig(ctx, userID, &kind)
	if err != nil {
		return 0, err
	}

	// First scheduling for this user: materialize the system default as the
	// user's global config so later recomputations see the same policy.
	if cfg.ID == uuid.Nil {
		cfg, err = s.configs.Upsert(ctx, cfg)
		if err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to materialize default reminder config")
		}
	}

	today := requestcontext.Now(ctx).UTC()
	plan, err := reminder.GeneratePlan(expiresAt, today, cfg, kind)
	if err != nil {
		return 0, err
	}

	rows := make([]reminder.ScheduledReminder, 0, len(plan))
	for _, e := range plan {
		rows = append(rows, reminder.ScheduledReminder{
			ID:           uuid.New(),
			UserID:       userID,
			DocumentID:   documentID,
			ScheduledFor: e.ScheduledFor,
			Type:         e.Type,
			Message:      e.Message,
			CreatedAt:    today,
		})
	}

	// The plan is computed before anything is deleted; delete and insert
	// commit together or not at all.
	err = s.tx.RunInTx(ctx, documentID, func(ctx context.Context) error {
		if err := s.reminders.DeleteUnsent(ctx, documentID); err != nil {
			return err
		}
		return s.reminders.InsertMany(ctx, rows)
	})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to rewrite reminder plan")
	}

	s.metrics.IncrementPlansScheduled(len(rows))
	s.metrics.ObserveScheduleLatency(time.Since(start))
	s.events.Emit(ctx, events.Event{
		Type:       events.TypeReminderScheduled,
		UserID:     userID,
		DocumentID: documentID,
		Count:      len(rows),
	})

	s.logger.InfoContext(ctx, "reminder plan scheduled",
		"document_id", documentID,
		"user_id", userID,
		"events", len(rows),
	)
	return len(rows), nil
}

// ListForDocument returns every reminder persisted for a document, sent and
// pending alike, in scheduled order.
func (s *Service) ListForDocument(ctx context.Context, documentID string) ([]reminder.ScheduledReminder, error) {
	rows, err := s.reminders.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reminders for document")
	}
	return rows, nil
}

// DeleteForDocument drops every reminder for a document, sent history
// included. Called when the owning document is deleted.
func (s *Service) DeleteForDocument(ctx context.Context, documentID string) error {
	if err := s.reminders.DeleteByDocument(ctx, documentID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete reminders for document")
	}
	return nil
}
