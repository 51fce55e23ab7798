package mailer

import (
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/zeenat-khan28/sports-dbms/pkg/config"
)

// Message describes a single outbound email. Body is an HTML template with
// {{student_name}}, {{usn}}, {{branch}} and {{semester}} placeholders that
// are substituted per recipient.
type Message struct {
	To       string
	Subject  string
	Body     string
	Name     string
	USN      string
	Branch   string
	Semester string
}

// Sender delivers messages over SMTP.
type Sender interface {
	Send(msg Message) error
}

// SMTPMailer sends mail through a configured SMTP relay using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// New constructs an SMTPMailer from config.
func New(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// Send personalises and delivers a single message.
func (m *SMTPMailer) Send(msg Message) error {
	if msg.To == "" || !strings.Contains(msg.To, "@") {
		return fmt.Errorf("invalid recipient address %q", msg.To)
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/html", personalise(msg))

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func personalise(msg Message) string {
	body := strings.ReplaceAll(msg.Body, "\n", "<br>")
	replacements := map[string]string{
		"{{student_name}}": fallback(msg.Name, "Student"),
		"{{usn}}":          fallback(msg.USN, "N/A"),
		"{{branch}}":       fallback(msg.Branch, "N/A"),
		"{{semester}}":     msg.Semester,
	}
	for key, value := range replacements {
		body = strings.ReplaceAll(body, key, value)
	}
	return body
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
