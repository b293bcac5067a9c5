package email

import (
	"context"
	"fmt"
	"time"
)

// Notifier delivers a reset code to an address and reports failure.
type Notifier interface {
	SendOTP(ctx context.Context, to, fullName, otp string, ttl time.Duration) error
}

// MailNotifier renders the reset templates and hands them to a Sender.
type MailNotifier struct {
	sender  Sender
	tpl     *Templates
	product string
}

func NewMailNotifier(sender Sender, tpl *Templates, product string) *MailNotifier {
	if product == "" {
		product = "ClothingShop"
	}
	return &MailNotifier{sender: sender, tpl: tpl, product: product}
}

// SendOTP renders and sends synchronously; the Sender stops at the ctx deadline, so a
// code reported as undelivered is not sent afterwards.
func (n *MailNotifier) SendOTP(ctx context.Context, to, fullName, otp string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	html, text, err := n.tpl.RenderReset(ResetVars{
		Product:  n.product,
		FullName: fullName,
		Code:     otp,
		Minutes:  int(ttl.Round(time.Minute) / time.Minute),
	})
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}
	subject := n.product + " password reset code"

	return n.sender.Send(ctx, to, subject, html, text)
}
