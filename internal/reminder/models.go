// Package reminder holds the reminder-engine domain: configuration policy,
// the frequency table, and the pure plan generator.
package reminder

import (
	"time"

	"github.com/google/uuid"

	dErrors "idmonitor/pkg/domain-errors"
)

// Frequency is a named reminder cadence.
// Invariant: the value must be one of the supported frequencies.
//
// Usage: construct via ParseFrequency at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Frequency string

const (
	FrequencyDaily    Frequency = "DAILY"
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
)

// validFrequencies is the single source of truth for valid cadences.
var validFrequencies = map[Frequency]bool{
	FrequencyDaily:    true,
	FrequencyWeekly:   true,
	FrequencyBiweekly: true,
	FrequencyMonthly:  true,
}

// ParseFrequency constructs a Frequency from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseFrequency(s string) (Frequency, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "frequency cannot be empty")
	}
	f := Frequency(s)
	if !f.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid frequency: "+s)
	}
	return f, nil
}

// IsValid checks if the frequency is one of the supported enum values.
func (f Frequency) IsValid() bool {
	return validFrequencies[f]
}

func (f Frequency) String() string {
	return string(f)
}

// DocumentKind categorizes an identity document. The engine never looks
// inside a document; the kind only selects configuration and appears in
// reminder messages.
type DocumentKind string

const (
	KindPassport        DocumentKind = "PASSPORT"
	KindNationalID      DocumentKind = "NATIONAL_ID"
	KindDriversLicense  DocumentKind = "DRIVERS_LICENSE"
	KindResidencePermit DocumentKind = "RESIDENCE_PERMIT"
	KindVisa            DocumentKind = "VISA"
	KindOther           DocumentKind = "OTHER"
)

var validDocumentKinds = map[DocumentKind]bool{
	KindPassport:        true,
	KindNationalID:      true,
	KindDriversLicense:  true,
	KindResidencePermit: true,
	KindVisa:            true,
	KindOther:           true,
}

// ParseDocumentKind constructs a DocumentKind from external input.
func ParseDocumentKind(s string) (DocumentKind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document kind cannot be empty")
	}
	k := DocumentKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid document kind: "+s)
	}
	return k, nil
}

func (k DocumentKind) IsValid() bool {
	return validDocumentKinds[k]
}

func (k DocumentKind) String() string {
	return string(k)
}

// Type classifies a planned reminder event.
type Type string

const (
	TypeEarlyWarning   Type = "EARLY_WARNING"
	TypeUrgentReminder Type = "URGENT_REMINDER"
	TypeCriticalAlert  Type = "CRITICAL_ALERT"
	TypeExpiredNotice  Type = "EXPIRED_NOTICE"
)

// Config is the reminder policy for one (user, optional document kind) pair.
// A nil Kind means the config applies to every kind the user has not
// overridden. Configs are never deleted, only superseded by updates.
type Config struct {
	ID                 uuid.UUID
	UserID             string
	Kind               *DocumentKind
	EarlyReminderDays  []int
	UrgentPeriodDays   int
	UrgentFrequency    Frequency
	CriticalPeriodDays int
	CriticalFrequency  Frequency
	EmailEnabled       bool
	PushEnabled        bool
	SMSEnabled         bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DefaultConfig is the hardcoded system fallback applied when a user has no
// persisted config. The resolver never persists it; the scheduler
// materializes it on first use.
func DefaultConfig(userID string) Config {
	return Config{
		UserID:             userID,
		EarlyReminderDays:  []int{365, 180, 90},
		UrgentPeriodDays:   30,
		UrgentFrequency:    FrequencyWeekly,
		CriticalPeriodDays: 7,
		CriticalFrequency:  FrequencyDaily,
		EmailEnabled:       true,
		PushEnabled:        true,
		SMSEnabled:         false,
	}
}

// Validate enforces the config invariants at write time. The plan generator
// assumes a validated config and does not re-check them.
//
// Errors: CodeInvariantViolation when the critical period is not strictly
// shorter than the urgent period; CodeValidation for everything else.
func (c Config) Validate() error {
	if c.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	if c.Kind != nil && !c.Kind.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid document kind: "+c.Kind.String())
	}
	if !c.UrgentFrequency.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid urgent frequency: "+c.UrgentFrequency.String())
	}
	if !c.CriticalFrequency.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid critical frequency: "+c.CriticalFrequency.String())
	}
	if c.UrgentPeriodDays <= 0 {
		return dErrors.New(dErrors.CodeValidation, "urgent period must be positive")
	}
	if c.CriticalPeriodDays <= 0 {
		return dErrors.New(dErrors.CodeValidation, "critical period must be positive")
	}
	if c.CriticalPeriodDays >= c.UrgentPeriodDays {
		return dErrors.New(dErrors.CodeInvariantViolation, "critical period must be shorter than urgent period")
	}
	seen := make(map[int]bool, len(c.EarlyReminderDays))
	for _, d := range c.EarlyReminderDays {
		if d <= 0 {
			return dErrors.New(dErrors.CodeValidation, "early reminder days must be positive")
		}
		if seen[d] {
			return dErrors.New(dErrors.CodeValidation, "duplicate early reminder day")
		}
		seen[d] = true
	}
	return nil
}

// Event is one planned notification produced by the plan generator. It is
// not yet bound to a persisted row.
type Event struct {
	ScheduledFor time.Time
	Type         Type
	Message      string
}

// ScheduledReminder is one persisted notification instance. SentAt is nil
// while the reminder is pending; sent rows are immutable history.
type ScheduledReminder struct {
	ID           uuid.UUID
	UserID       string
	DocumentID   string
	ScheduledFor time.Time
	Type         Type
	Message      string
	SentAt       *time.Time
	CreatedAt    time.Time
}

// Pending reports whether the reminder has not been dispatched yet.
func (r ScheduledReminder) Pending() bool {
	return r.SentAt == nil
}
