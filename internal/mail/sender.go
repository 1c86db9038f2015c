// Package mail delivers notification messages.
package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// Message is a plain text notification addressed to one or more recipients.
type Message struct {
	Event   string
	To      []string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender when a relay is configured and a logging sender otherwise.
func NewSender(cfg config.NotificationConfig, logger *zap.Logger) Sender {
	if !cfg.SMTPEnabled() {
		return &logSender{logger: logger}
	}
	return &smtpSender{
		from:   cfg.EmailFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

type smtpSender struct {
	from   string
	dialer *gomail.Dialer
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type logSender struct {
	logger *zap.Logger
}

func (s *logSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification delivery",
		zap.String("event", msg.Event),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
