// Package notify defines the notification channel collaborators. The engine
// treats transports as fire-and-collect: each send either succeeds or fails
// on its own, and retries are the transport's business, not ours.
package notify

//go:generate mockgen -source=notify.go -destination=mocks/mocks.go -package=mocks

import "context"

// EmailSender delivers a reminder to an email address.
type EmailSender interface {
	SendEmail(ctx context.Context, address, message string) error
}

// PushSender delivers a reminder as a push notification to a user's devices.
type PushSender interface {
	SendPush(ctx context.Context, userID, message string) error
}

// SMSSender delivers a reminder as a text message.
type SMSSender interface {
	SendSMS(ctx context.Context, userID, message string) error
}
