// Package email delivers one-time codes over SMTP.
package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
)

// Sender sends a multipart/alternative message. Implementations must stop by the
// context deadline so nothing is delivered after the caller gave up.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// DefaultSendTimeout bounds a send whose context carries no deadline.
const DefaultSendTimeout = 10 * time.Second

// SMTPSender implements Sender over go-mail.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
	// Timeout applies when ctx has no deadline. Zero means DefaultSendTimeout.
	Timeout time.Duration
}

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{
		Host:    host,
		Port:    port,
		From:    from,
		User:    user,
		Pass:    pass,
		TLSMode: "auto",
	}
}

// Send dials and delivers in the caller's goroutine. The dial and every socket
// read/write are bounded by the time left on ctx.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	d, err := s.dialer(ctx)
	if err != nil {
		return err
	}
	log := logger.From(ctx).With(
		logger.Component("smtp"),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
	)

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	if err := d.DialAndSend(m); err != nil {
		log.Warn("smtp send failed", logger.Duration("budget", d.Timeout), logger.Err(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp send: %w", ctxErr)
		}
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Debug("smtp send ok", logger.String("tls_mode", s.TLSMode))
	return nil
}

// dialer builds a go-mail dialer whose Timeout is the remaining ctx budget.
func (s *SMTPSender) dialer(ctx context.Context) (*mail.Dialer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	budget := s.Timeout
	if budget <= 0 {
		budget = DefaultSendTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return nil, context.DeadlineExceeded
		}
		if left < budget {
			budget = left
		}
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.Timeout = budget
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	return d, nil
}
