package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// ResetMailer delivers password-reset links over SMTP. A nil or
// unconfigured mailer fails fast so the caller can surface the delivery
// error instead of silently dropping the email.
type ResetMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewResetMailer(host, port, username, password, from string) *ResetMailer {
	return &ResetMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
	}
}

func (m *ResetMailer) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	subject := "Password Reset Request"
	body := fmt.Sprintf(`<h2>Hello %s</h2>
<p>Please use the url below to reset your password</p>
<p>This reset link is valid for 30 minutes.</p>
<a href=%q clicktracking=off>%s</a>
<p>Kind regards,</p>
<p>Kekec</p>`, name, resetURL, resetURL)

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", email))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(body)
	message.WriteString("\r\n")

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{email}, []byte(message.String()))
}
