package email

import (
	"context"
	"errors"
	"testing"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	to, subject, html, text string
	err                     error
	block                   chan struct{}
}

func (c *captureSender) Send(ctx context.Context, to, subject, html, text string) error {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.to, c.subject, c.html, c.text = to, subject, html, text
	return c.err
}

func TestMailNotifier_RendersCodeNameAndTTL(t *testing.T) {
	tpl, err := LoadTemplates()
	require.NoError(t, err)
	s := &captureSender{}
	n := NewMailNotifier(s, tpl, "ClothingShop")

	require.NoError(t, n.SendOTP(context.Background(), "ann@example.com", "Ann <Lee>", "012345", 5*time.Minute))

	assert.Equal(t, "ann@example.com", s.to)
	assert.Equal(t, "ClothingShop password reset code", s.subject)
	assert.Contains(t, s.text, "012345")
	assert.Contains(t, s.text, "5 minutes")
	assert.Contains(t, s.text, "Ann <Lee>")
	assert.Contains(t, s.html, "012345")
	assert.Contains(t, s.html, "Ann &lt;Lee&gt;")
}

func TestMailNotifier_PropagatesSenderError(t *testing.T) {
	tpl, err := LoadTemplates()
	require.NoError(t, err)
	boom := errors.New("smtp down")
	n := NewMailNotifier(&captureSender{err: boom}, tpl, "")

	err = n.SendOTP(context.Background(), "a@example.com", "A", "123456", time.Minute)
	assert.ErrorIs(t, err, boom)
}

func TestMailNotifier_HonorsDeadline(t *testing.T) {
	tpl, err := LoadTemplates()
	require.NoError(t, err)
	block := make(chan struct{})
	defer close(block)
	n := NewMailNotifier(&captureSender{block: block}, tpl, "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = n.SendOTP(ctx, "a@example.com", "A", "123456", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSMTPSender_DialerBudgetFollowsDeadline(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "no-reply@example.com", "u", "p")

	d, err := s.dialer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultSendTimeout, d.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	d, err = s.dialer(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, d.Timeout, 2*time.Second)
	assert.Greater(t, d.Timeout, time.Duration(0))
}

func TestSMTPSender_ExpiredContextNeverDials(t *testing.T) {
	// nothing listens on this port; reaching the dial would give a different error
	s := NewSMTPSender("127.0.0.1", 1, "no-reply@example.com", "", "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	err := s.Send(ctx, "a@example.com", "s", "<p>h</p>", "t")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSMTPSender_TLSModes(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 465, "no-reply@example.com", "", "")

	s.TLSMode = "ssl"
	d, err := s.dialer(context.Background())
	require.NoError(t, err)
	assert.True(t, d.SSL)

	s.TLSMode = "starttls"
	d, err = s.dialer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mail.MandatoryStartTLS, d.StartTLSPolicy)

	s.TLSMode = "none"
	d, err = s.dialer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mail.StartTLSPolicy(mail.NoStartTLS), d.StartTLSPolicy)
}
