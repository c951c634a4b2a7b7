package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers email messages.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail over an authenticated SMTP connection.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a sender from the SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}, nil
}

// Send delivers a single message. Each call dials a fresh SMTP connection.
func (s *SMTPSender) Send(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// NoopSender satisfies Sender when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) Send(Message) error { return nil }
