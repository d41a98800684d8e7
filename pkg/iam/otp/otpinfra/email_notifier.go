package otpinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/fundora/fundora/pkg/config"
	"github.com/fundora/fundora/pkg/notifx"
)

const (
	verificationTemplate  = "otp_verification"
	passwordResetTemplate = "otp_password_reset"
)

const verificationHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Welcome to Fundora, {{.Name}}!</h2>
  <p>Use the code below to verify your account:</p>
  <div style="background-color: #f4f4f4; padding: 20px; text-align: center; border-radius: 8px; margin: 20px 0;">
    <span style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #2c3e50;">{{.Code}}</span>
  </div>
  <p>This code expires in <strong>{{.Minutes}} minutes</strong>.</p>
  <p style="color: #888; font-size: 12px;">If you did not create a Fundora account, you can ignore this email.</p>
</div>`

const passwordResetHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Password Reset Request</h2>
  <p>Hi {{.Name}},</p>
  <p>We received a request to reset your Fundora password. Use the code below to continue:</p>
  <div style="background-color: #f4f4f4; padding: 20px; text-align: center; border-radius: 8px; margin: 20px 0;">
    <span style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #2c3e50;">{{.Code}}</span>
  </div>
  <p>This code expires in <strong>{{.Minutes}} minutes</strong>.</p>
  <p style="color: #888; font-size: 12px;">If you did not request a password reset, your account is still safe and no action is needed.</p>
</div>`

type codeTemplateData struct {
	Name    string
	Code    string
	Minutes int
}

// EmailNotifier implements otp.Notifier on top of the notification client.
type EmailNotifier struct {
	client *notifx.Client
	from   string
}

// NewEmailNotifier registers the challenge email templates and returns the
// notifier. Registration only fails on a malformed template, which is a
// programming error surfaced at startup.
func NewEmailNotifier(client *notifx.Client, cfg config.MailConfig) (*EmailNotifier, error) {
	if err := client.RegisterTemplate(verificationTemplate, verificationHTML); err != nil {
		return nil, err
	}
	if err := client.RegisterTemplate(passwordResetTemplate, passwordResetHTML); err != nil {
		return nil, err
	}
	return &EmailNotifier{
		client: client,
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
	}, nil
}

func (n *EmailNotifier) SendVerificationCode(ctx context.Context, to, name, code string, window time.Duration) error {
	return n.send(ctx, verificationTemplate, "Verify Your Fundora Account - OTP", to, name, code, window)
}

func (n *EmailNotifier) SendPasswordResetCode(ctx context.Context, to, name, code string, window time.Duration) error {
	return n.send(ctx, passwordResetTemplate, "Reset Your Fundora Password", to, name, code, window)
}

func (n *EmailNotifier) send(ctx context.Context, template, subject, to, name, code string, window time.Duration) error {
	data := codeTemplateData{
		Name:    name,
		Code:    code,
		Minutes: int(window.Minutes()),
	}
	return n.client.SendTemplatedEmail(ctx, template, data, notifx.EmailMessage{
		From:     n.from,
		To:       []string{to},
		Subject:  subject,
		TextBody: fmt.Sprintf("Your Fundora code is %s. It expires in %d minutes.", code, data.Minutes),
	})
}
