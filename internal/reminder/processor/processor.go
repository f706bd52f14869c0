// Package processor drains due reminders and hands them to the notification
// channels. It owns no cadence: an external trigger (cron job, admin
// endpoint, test) decides when and with which "now" a batch runs.
package processor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"idmonitor/internal/document"
	"idmonitor/internal/events"
	"idmonitor/internal/notify"
	"idmonitor/internal/reminder"
	"idmonitor/internal/reminder/metrics"
	dErrors "idmonitor/pkg/domain-errors"
	"idmonitor/pkg/platform/sentinel"
)

// ReminderStore is the slice of reminder persistence the processor touches.
type ReminderStore interface {
	FindDue(ctx context.Context, now time.Time, limit int) ([]reminder.ScheduledReminder, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
}

// ConfigResolver supplies the user's effective notification-channel flags.
type ConfigResolver interface {
	ResolveConfig(ctx context.Context, userID string, kind *reminder.DocumentKind) (reminder.Config, error)
}

// Processor dispatches due reminders. Stateless across invocations;
// concurrent runs are safe because claiming a reminder is an atomic
// conditional update in the store.
type Processor struct {
	logger    *slog.Logger
	store     ReminderStore
	resolver  ConfigResolver
	directory document.UserDirectory
	email     notify.EmailSender
	push      notify.PushSender
	sms       notify.SMSSender
	metrics   *metrics.Metrics
	events    *events.Publisher
}

func New(
	logger *slog.Logger,
	store ReminderStore,
	resolver ConfigResolver,
	directory document.UserDirectory,
	email notify.EmailSender,
	push notify.PushSender,
	sms notify.SMSSender,
	m *metrics.Metrics,
	publisher *events.Publisher,
) *Processor {
	return &Processor{
		logger:    logger,
		store:     store,
		resolver:  resolver,
		directory: directory,
		email:     email,
		push:      push,
		sms:       sms,
		metrics:   m,
		events:    publisher,
	}
}

// ProcessDue fetches up to batchSize pending reminders due at or before now,
// oldest first, and dispatches each over the user's enabled channels.
//
// Each reminder is claimed before dispatch with a conditional sent_at update,
// so a reminder is attempted by at most one run; a crash after the claim
// loses at most that one notification, which the scheduling layer explicitly
// tolerates. Per-reminder failures are logged and never abort the batch.
//
// Returns the number of reminders claimed and attempted, not the number
// delivered.
func (p *Processor) ProcessDue(ctx context.Context, now time.Time, batchSize int) (int, error) {
	start := time.Now()

	due, err := p.store.FindDue(ctx, now, batchSize)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch due reminders")
	}

	processed := 0
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			// Unclaimed rows stay pending and are picked up by the next run.
			return processed, dErrors.Wrap(err, dErrors.CodeTimeout, "batch aborted: context cancelled")
		}

		if err := p.store.MarkSent(ctx, r.ID, now); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyClaimed) {
				p.metrics.IncrementProcessed("claim_lost")
				continue
			}
			p.metrics.IncrementProcessed("error")
			p.logger.ErrorContext(ctx, "failed to claim due reminder",
				"reminder_id", r.ID.String(),
				"error", err,
			)
			continue
		}

		p.dispatch(ctx, r)
		processed++
	}

	p.metrics.ObserveProcessLatency(time.Since(start))
	if len(due) > 0 {
		p.logger.InfoContext(ctx, "processed due reminders",
			"due", len(due),
			"processed", processed,
		)
	}
	return processed, nil
}

// dispatch fans the reminder out to every enabled channel concurrently and
// waits for all outcomes. Channels are independent: one failing does not
// cancel the others, and any subset succeeding still counts the reminder as
// processed.
func (p *Processor) dispatch(ctx context.Context, r reminder.ScheduledReminder) {
	cfg, err := p.resolver.ResolveConfig(ctx, r.UserID, nil)
	if err != nil {
		p.metrics.IncrementProcessed("error")
		p.logger.ErrorContext(ctx, "failed to resolve channels for reminder",
			"reminder_id", r.ID.String(),
			"user_id", r.UserID,
			"error", err,
		)
		return
	}

	var (
		g        errgroup.Group
		mu       sync.Mutex
		channels []string
		failures []string
	)
	record := func(channel string, err error) {
		mu.Lock()
		defer mu.Unlock()
		channels = append(channels, channel)
		if err != nil {
			failures = append(failures, channel)
		}
	}

	if cfg.EmailEnabled {
		g.Go(func() error {
			address, err := p.directory.EmailAddress(ctx, r.UserID)
			if err == nil {
				err = p.email.SendEmail(ctx, address, r.Message)
			}
			record("email", err)
			return err
		})
	}
	if cfg.PushEnabled {
		g.Go(func() error {
			err := p.push.SendPush(ctx, r.UserID, r.Message)
			record("push", err)
			return err
		})
	}
	if cfg.SMSEnabled {
		g.Go(func() error {
			err := p.sms.SendSMS(ctx, r.UserID, r.Message)
			record("sms", err)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		for _, channel := range failures {
			p.metrics.IncrementDispatchFailure(channel)
		}
		p.logger.WarnContext(ctx, "reminder dispatch partially failed",
			"reminder_id", r.ID.String(),
			"failed_channels", failures,
			"error", err,
		)
	}

	p.metrics.IncrementProcessed("dispatched")
	p.events.Emit(ctx, events.Event{
		Type:       events.TypeReminderDispatched,
		UserID:     r.UserID,
		DocumentID: r.DocumentID,
		ReminderID: r.ID.String(),
		Channels:   channels,
		Failures:   failures,
	})
}
