package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"idmonitor/pkg/platform/sentinel"
)

const emailSubject = "Document expiry reminder"

// SendGridSender delivers reminder emails through SendGrid.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *SendGridSender) SendEmail(ctx context.Context, address, message string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", address)
	htmlContent := fmt.Sprintf("<p>%s</p>", message)

	email := mail.NewSingleEmail(from, emailSubject, to, message, htmlContent)

	response, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("send reminder email: %w", err)
	}
	if response.StatusCode >= 500 {
		return fmt.Errorf("send reminder email: status %d: %w", response.StatusCode, sentinel.ErrUnavailable)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("send reminder email: status %d", response.StatusCode)
	}
	return nil
}
