package handler

import (
	"time"

	"github.com/google/uuid"

	"idmonitor/internal/reminder"
	dErrors "idmonitor/pkg/domain-errors"
)

// UpdateConfigRequest is the body of PUT /reminders/config.
type UpdateConfigRequest struct {
	DocumentKind       *string `json:"document_kind,omitempty"`
	EarlyReminderDays  []int   `json:"early_reminder_days"`
	UrgentPeriodDays   int     `json:"urgent_period_days"`
	UrgentFrequency    string  `json:"urgent_frequency"`
	CriticalPeriodDays int     `json:"critical_period_days"`
	CriticalFrequency  string  `json:"critical_frequency"`
	EmailEnabled       bool    `json:"email_enabled"`
	PushEnabled        bool    `json:"push_enabled"`
	SMSEnabled         bool    `json:"sms_enabled"`
}

// ToConfig converts the request into a domain config owned by userID.
// Full validation happens in the service; only field parsing happens here.
func (req UpdateConfigRequest) ToConfig(userID string) (reminder.Config, error) {
	cfg := reminder.Config{
		UserID:             userID,
		EarlyReminderDays:  req.EarlyReminderDays,
		UrgentPeriodDays:   req.UrgentPeriodDays,
		CriticalPeriodDays: req.CriticalPeriodDays,
		EmailEnabled:       req.EmailEnabled,
		PushEnabled:        req.PushEnabled,
		SMSEnabled:         req.SMSEnabled,
	}

	if req.DocumentKind != nil {
		kind, err := reminder.ParseDocumentKind(*req.DocumentKind)
		if err != nil {
			return reminder.Config{}, err
		}
		cfg.Kind = &kind
	}

	urgent, err := reminder.ParseFrequency(req.UrgentFrequency)
	if err != nil {
		return reminder.Config{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid urgent_frequency")
	}
	cfg.UrgentFrequency = urgent

	critical, err := reminder.ParseFrequency(req.CriticalFrequency)
	if err != nil {
		return reminder.Config{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid critical_frequency")
	}
	cfg.CriticalFrequency = critical

	return cfg, nil
}

// ScheduleRequest is the body of POST /reminders/schedule.
type ScheduleRequest struct {
	DocumentID string `json:"document_id"`
}

// ProcessRequest is the body of POST /reminders/process.
type ProcessRequest struct {
	BatchSize int `json:"batch_size,omitempty"`
}

// ConfigResponse mirrors a reminder config on the wire.
type ConfigResponse struct {
	ID                 string  `json:"id,omitempty"`
	DocumentKind       *string `json:"document_kind,omitempty"`
	EarlyReminderDays  []int   `json:"early_reminder_days"`
	UrgentPeriodDays   int     `json:"urgent_period_days"`
	UrgentFrequency    string  `json:"urgent_frequency"`
	CriticalPeriodDays int     `json:"critical_period_days"`
	CriticalFrequency  string  `json:"critical_frequency"`
	EmailEnabled       bool    `json:"email_enabled"`
	PushEnabled        bool    `json:"push_enabled"`
	SMSEnabled         bool    `json:"sms_enabled"`
}

func toConfigResponse(cfg reminder.Config) ConfigResponse {
	resp := ConfigResponse{
		EarlyReminderDays:  cfg.EarlyReminderDays,
		UrgentPeriodDays:   cfg.UrgentPeriodDays,
		UrgentFrequency:    string(cfg.UrgentFrequency),
		CriticalPeriodDays: cfg.CriticalPeriodDays,
		CriticalFrequency:  string(cfg.CriticalFrequency),
		EmailEnabled:       cfg.EmailEnabled,
		PushEnabled:        cfg.PushEnabled,
		SMSEnabled:         cfg.SMSEnabled,
	}
	if cfg.ID != uuid.Nil {
		resp.ID = cfg.ID.String()
	}
	if cfg.Kind != nil {
		kind := string(*cfg.Kind)
		resp.DocumentKind = &kind
	}
	return resp
}

// ScheduleResponse reports how many reminder events were persisted.
type ScheduleResponse struct {
	DocumentID string `json:"document_id"`
	Scheduled  int    `json:"scheduled"`
}

// ProcessResponse reports how many due reminders were dispatched.
type ProcessResponse struct {
	Processed int `json:"processed"`
}

// ReminderResponse mirrors one scheduled reminder on the wire.
type ReminderResponse struct {
	ID           string     `json:"id"`
	DocumentID   string     `json:"document_id"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Type         string     `json:"type"`
	Message      string     `json:"message"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
}

func toReminderResponses(rows []reminder.ScheduledReminder) []ReminderResponse {
	out := make([]ReminderResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReminderResponse{
			ID:           r.ID.String(),
			DocumentID:   r.DocumentID,
			ScheduledFor: r.ScheduledFor,
			Type:         string(r.Type),
			Message:      r.Message,
			SentAt:       r.SentAt,
		})
	}
	return out
}
