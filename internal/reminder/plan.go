package reminder

import (
	"fmt"
	"math"
	"time"
)

// expiryDateFormat keeps generated messages deterministic regardless of the
// caller's locale.
const expiryDateFormat = "2006-01-02"

// DaysUntil returns the floor of whole 24-hour days from one instant to
// another. The result is negative when until lies in the past. Callers pass
// UTC instants for reproducible plans.
func DaysUntil(from, until time.Time) int {
	return int(math.Floor(until.Sub(from).Hours() / 24))
}

// GeneratePlan computes the full set of future notification events for a
// document expiring at expiresAt, as seen from today. It is pure and
// deterministic: identical inputs always produce identical events, which is
// what makes rescheduling idempotent and the generator testable without a
// clock.
//
// Events are appended in generation order: early warnings, then urgent, then
// critical, then the expired notice. Dates already in the past relative to
// today are considered missed and never retroactively scheduled.
//
// The config is assumed validated (Config.Validate runs at write time); the
// only reachable error is an invalid frequency, which indicates a caller bug.
func GeneratePlan(expiresAt, today time.Time, cfg Config, kind DocumentKind) ([]Event, error) {
	daysUntilExpiry := DaysUntil(today, expiresAt)

	var events []Event

	// One-time early warnings at fixed offsets before expiry.
	for _, days := range cfg.EarlyReminderDays {
		reminderDate := expiresAt.AddDate(0, 0, -days)
		if today.Before(reminderDate) {
			events = append(events, Event{
				ScheduledFor: reminderDate,
				Type:         TypeEarlyWarning,
				Message:      expiryMessage(kind, days, expiresAt),
			})
		}
	}

	// Recurring reminders while inside the urgent window, stopping where the
	// critical window takes over.
	if daysUntilExpiry <= cfg.UrgentPeriodDays && daysUntilExpiry > cfg.CriticalPeriodDays {
		urgent, err := frequencyEvents(today, expiresAt, cfg.UrgentFrequency, cfg.CriticalPeriodDays, TypeUrgentReminder, kind)
		if err != nil {
			return nil, err
		}
		events = append(events, urgent...)
	}

	// Recurring reminders inside the critical window, up to expiry itself.
	if daysUntilExpiry <= cfg.CriticalPeriodDays && daysUntilExpiry > 0 {
		critical, err := frequencyEvents(today, expiresAt, cfg.CriticalFrequency, 0, TypeCriticalAlert, kind)
		if err != nil {
			return nil, err
		}
		events = append(events, critical...)
	}

	// A single notice once the document has already expired.
	if daysUntilExpiry < 0 {
		events = append(events, Event{
			ScheduledFor: today,
			Type:         TypeExpiredNotice,
			Message:      fmt.Sprintf("URGENT: Your %s has expired! Please renew immediately.", kind),
		})
	}

	return events, nil
}

// frequencyEvents steps from start toward end at the cadence's interval,
// emitting one event per step while strictly before end minus stopBeforeDays.
// Each message embeds the days remaining as of that event's date.
func frequencyEvents(start, end time.Time, f Frequency, stopBeforeDays int, t Type, kind DocumentKind) ([]Event, error) {
	interval, err := IntervalDays(f)
	if err != nil {
		return nil, err
	}

	stop := end.AddDate(0, 0, -stopBeforeDays)

	var events []Event
	for current := start; current.Before(stop); current = current.AddDate(0, 0, interval) {
		events = append(events, Event{
			ScheduledFor: current,
			Type:         t,
			Message:      expiryMessage(kind, DaysUntil(current, end), end),
		})
	}
	return events, nil
}

func expiryMessage(kind DocumentKind, days int, expiresAt time.Time) string {
	return fmt.Sprintf("Your %s expires in %d days (%s)", kind, days, expiresAt.Format(expiryDateFormat))
}
