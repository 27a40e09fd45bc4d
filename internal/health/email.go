package health

import (
	"fmt"
	"net/smtp"
	"strings"
)

// EmailSender delivers alert notifications over SMTP.
type EmailSender struct {
	Host     string
	Port     int
	From     string
	To       []string
	Username string
	Password string
}

// NewEmailSender returns nil when the SMTP settings are incomplete, which
// disables email alerts.
func NewEmailSender(host string, port int, from, to, username, password string) *EmailSender {
	if host == "" || from == "" || to == "" {
		return nil
	}

	var recipients []string
	for _, addr := range strings.Split(to, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	return &EmailSender{
		Host:     host,
		Port:     port,
		From:     from,
		To:       recipients,
		Username: username,
		Password: password,
	}
}

func (e *EmailSender) SendAlert(endpoint string, failures int, lastError string) error {
	subject := "Contact endpoint down"
	body := fmt.Sprintf("The contact endpoint has failed %d consecutive probes.\r\n\r\nEndpoint: %s\r\nLast error: %s\r\n", failures, endpoint, lastError)
	return e.send(subject, body)
}

func (e *EmailSender) SendRecovery(endpoint string) error {
	subject := "Contact endpoint recovered"
	body := fmt.Sprintf("The contact endpoint is responding again.\r\n\r\nEndpoint: %s\r\n", endpoint)
	return e.send(subject, body)
}

func (e *EmailSender) send(subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.From, strings.Join(e.To, ", "), subject, body)

	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)

	var auth smtp.Auth
	if e.Username != "" {
		auth = smtp.PlainAuth("", e.Username, e.Password, e.Host)
	}

	if err := smtp.SendMail(addr, auth, e.From, e.To, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}
