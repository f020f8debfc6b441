// Package notify emails salons about bookings taken over the phone.
package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

const defaultFromName = "Marcel"

// EmailSender delivers one email.
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}

// Email is a salon notification. HTML is optional; Text always goes out.
type Email struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// sender is the From identity shared by every provider.
type sender struct {
	email string
	name  string
}

func newSender(email, name string) sender {
	if name == "" {
		name = defaultFromName
	}
	return sender{email: email, name: name}
}

func (s sender) address() string {
	return fmt.Sprintf("%s <%s>", s.name, s.email)
}

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridConfig holds the SendGrid credentials and sender.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	client sendgridClient
	from   sender
	logger *logging.Logger
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	return newSendGridSender(sendgrid.NewSendClient(cfg.APIKey), cfg, logger)
}

func newSendGridSender(client sendgridClient, cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{client: client, from: newSender(cfg.FromEmail, cfg.FromName), logger: logger}
}

func (s *SendGridSender) Send(ctx context.Context, msg Email) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}
	htmlBody := msg.HTML
	if htmlBody == "" {
		htmlBody = msg.Text
	}
	message := mail.NewSingleEmail(
		mail.NewEmail(s.from.name, s.from.email),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		htmlBody,
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send to %s: %w", msg.To, err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Warn("sendgrid rejected booking email", "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("notify: sendgrid returned status %d", resp.StatusCode)
	}
	s.logger.Info("booking email sent", "provider", "sendgrid", "to", msg.To, "status", resp.StatusCode)
	return nil
}

// LogSender only logs. It stands in for a provider in development so the
// booking email path still runs end to end.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Email) error {
	s.logger.Info("booking email (not sent)", "to", msg.To, "subject", msg.Subject, "text", msg.Text)
	return nil
}
