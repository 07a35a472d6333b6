package smtp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRecipients письмо без получателей.
var ErrNoRecipients = errors.New("no recipients")

// Mailer отправляет текстовые письма от имени from.
type Mailer struct {
	dialer Dialer
	from   string
}

// NewMailer создает Mailer.
func NewMailer(dialer Dialer, from string) *Mailer {
	return &Mailer{dialer: dialer, from: from}
}

// Send отправляет письмо в кодировке UTF-8.
func (m *Mailer) Send(to []string, subject, body string) error {
	const op = "smtp.Send"

	if len(to) == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoRecipients)
	}

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	client, err := m.dialer.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("%s: rcpt to %s: %w", op, addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}
