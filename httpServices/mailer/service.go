package httpServices

import (
	"crypto/tls"
	"net/smtp"
	"time"

	"github.com/knadh/smtppool"

	"storefront-auth/logger"
)

// Mailer sends email over a pooled SMTP connection.
type Mailer struct {
	pool *smtppool.Pool
	from string
}

// NewMailer connects the SMTP pool. A nil return means email delivery is
// unavailable; callers treat that as delivered=false, not a startup error.
func NewMailer(host string, port int, username, password, from string) *Mailer {
	if host == "" {
		logger.Warning("SMTP host not configured, email delivery disabled")
		return &Mailer{from: from}
	}

	var auth smtp.Auth
	if username != "" || password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	pool, err := smtppool.New(smtppool.Opt{
		Host:            host,
		Port:            port,
		MaxConns:        4,
		IdleTimeout:     15 * time.Second,
		PoolWaitTimeout: 15 * time.Second,
		TLSConfig: &tls.Config{
			ServerName: host,
		},
		Auth: auth,
	})
	if err != nil {
		logger.Error("Failed to set up SMTP pool", err)
		return &Mailer{from: from}
	}

	return &Mailer{pool: pool, from: from}
}

// Send delivers one email. Failures are logged and reported as false.
func (m *Mailer) Send(target, subject, body string) bool {
	if m.pool == nil {
		logger.Warning("SMTP pool unavailable, skipping delivery to " + target)
		return false
	}

	err := m.pool.Send(smtppool.Email{
		From:    m.from,
		To:      []string{target},
		Subject: subject,
		Text:    []byte(body),
	})
	if err != nil {
		logger.Error("Failed to send email to "+target, err)
		return false
	}

	return true
}
