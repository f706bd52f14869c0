package notify

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the log instead of a transport. It stands
// in for push and SMS until those providers are wired, and keeps local
// development free of vendor credentials.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmail(ctx context.Context, address, message string) error {
	s.logger.InfoContext(ctx, "email notification", "to", address, "message", message)
	return nil
}

func (s *LogSender) SendPush(ctx context.Context, userID, message string) error {
	s.logger.InfoContext(ctx, "push notification", "user_id", userID, "message", message)
	return nil
}

func (s *LogSender) SendSMS(ctx context.Context, userID, message string) error {
	s.logger.InfoContext(ctx, "sms notification", "user_id", userID, "message", message)
	return nil
}
