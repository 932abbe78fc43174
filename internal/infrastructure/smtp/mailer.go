// Package smtp sends the verification emails. Delivery is fire-and-forget:
// a failed send fails the request that triggered it, and nothing retries.
package smtp

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/anant-society/membership-api/internal/config"
)

// Mailer sends emails.
type Mailer interface {
	// SendEmail sends a message. html may be empty; when set, the message is
	// sent as multipart/alternative with the text part first.
	SendEmail(to, subject, text, html string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, text, html string) error {
	msg := m.buildMessage(to, subject, text, html)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

func (m *mailer) buildMessage(to, subject, text, html string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\nTo: %s\r\nSubject: %s\r\n", m.from, to, subject)

	if html == "" {
		fmt.Fprintf(&b, "\r\n%s", text)
		return b.String()
	}

	const boundary = "anant-mail-boundary"
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\nContent-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, text)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, html)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.String()
}
