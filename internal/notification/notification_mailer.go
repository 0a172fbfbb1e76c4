package notification

import (
	"os"
	"strconv"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPMailer reads SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD and
// SMTP_FROM. With no host configured it degrades to a logging no-op so the
// consumer can run in environments without a mail relay.
func NewSMTPMailer(logger ...*zap.Logger) Mailer {
	l := zap.L().Named("notification.mailer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		l.Warn("SMTP_HOST not set, emails will be logged and dropped")
		return &nopMailer{logger: l}
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port <= 0 {
		port = 587
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@example.com"
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASSWORD")),
		from:   from,
		logger: l,
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("send email failed", zap.String("to", to), zap.Error(err))
		return err
	}

	m.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

type nopMailer struct {
	logger *zap.Logger
}

func (m *nopMailer) Send(to, subject, _ string) error {
	m.logger.Info("email suppressed", zap.String("to", to), zap.String("subject", subject))
	return nil
}
