package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// ErrSendFailed возвращается при ошибке доставки письма
var ErrSendFailed = errors.New("mailer: send failed")

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// SMTPMailer отправляет письма через SMTP. Без логина работает с Mailpit/MailHog
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPMailer создает SMTP отправителя
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	host = strings.TrimSpace(host)
	m := &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: strings.TrimSpace(from),
	}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

// Send отправляет text/plain письмо
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	msg := buildMessage(m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// LogMailer пишет письмо в лог вместо отправки (smtp.enabled = false)
type LogMailer struct {
	logger Logger
}

// NewLogMailer создает отправителя в лог
func NewLogMailer(logger Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send логирует письмо
func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Info("mailer: email to %s with subject %q (smtp disabled)", to, subject)
	return nil
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		headerValue(from),
		headerValue(to),
		headerValue(subject),
		body,
	)
}

// headerValue убирает переводы строк, чтобы значение не могло добавить заголовок
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
