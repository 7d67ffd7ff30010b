package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/aviz85/socisphere/pkg/config"
	"github.com/aviz85/socisphere/pkg/logger"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail through a standard SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTP builds an SMTP-backed mailer. Host is required.
func NewSMTP(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("smtp port must be positive")
	}
	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.DefaultFrom, msg.To, msg.Subject, msg.Body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	if err := smtp.SendMail(addr, auth, m.cfg.DefaultFrom, []string{msg.To}, []byte(payload)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer writes mail to the log instead of delivering it. Used in dev and
// wherever no SMTP relay is configured.
type LogMailer struct {
	logg *logger.Logger
}

func NewLog(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"to":      msg.To,
			"subject": msg.Subject,
		})
		m.logg.Info(ctx, "mail delivery skipped (log mailer)")
	}
	return nil
}

// FromConfig returns an SMTP mailer when a host is configured, otherwise the
// log mailer.
func FromConfig(cfg config.SMTPConfig, logg *logger.Logger) (Mailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return NewLog(logg), nil
	}
	return NewSMTP(cfg)
}
