package mailer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

// Email is a single outgoing message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

type Sender interface {
	Send(ctx context.Context, email Email) error
}

type Config struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	MaxPerSecond float64
}

// SMTPMailer delivers mail through an SMTP relay, at most MaxPerSecond
// messages per second.
type SMTPMailer struct {
	from    string
	dialer  *gomail.Dialer
	limiter *rate.Limiter
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	limit := rate.Inf
	if cfg.MaxPerSecond > 0 {
		limit = rate.Limit(cfg.MaxPerSecond)
	}

	return &SMTPMailer{
		from:    cfg.From,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return errors.New("no recipients specified")
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail throttled: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer stands in for SMTP outside production. Bodies carry reset
// links, so they are only written at debug level.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.log.Warn("Email not sent, SMTP is not configured",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
	)
	m.log.Debug("Unsent email body", zap.String("body", email.Body))
	return nil
}
