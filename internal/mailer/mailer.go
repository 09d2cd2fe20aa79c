package mailer

import (
	"fmt"
	"log"

	"saxonmahar/yoga-ai/internal/config"

	"github.com/resend/resend-go/v2"
)

// Mailer delivers transactional email. Only verification codes for now.
type Mailer interface {
	SendOTP(to, name, code string) error
}

// New returns the Resend-backed mailer, or a dev-mode mailer that logs
// codes instead of sending when no API key is configured.
func New(cfg config.EmailConfig) Mailer {
	if cfg.APIKey == "" {
		log.Println("WARN: email api key not set, verification codes will be logged instead of sent")
		return &logMailer{}
	}
	return &resendMailer{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.From,
	}
}

type resendMailer struct {
	client *resend.Client
	from   string
}

func (m *resendMailer) SendOTP(to, name, code string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Your YogaAI verification code",
		Html: fmt.Sprintf(`
			<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
				<h2 style="color: #333;">Welcome to YogaAI, %s!</h2>
				<p>Enter this code to verify your email address:</p>
				<p style="font-size: 32px; font-weight: 700; letter-spacing: 8px; color: #6366f1;">%s</p>
				<p style="color: #888; font-size: 14px; margin-top: 16px;">
					This code expires in 10 minutes.
				</p>
				<p style="color: #aaa; font-size: 12px;">
					If you didn't create an account, you can safely ignore this email.
				</p>
			</div>
		`, name, code),
	}

	sent, err := m.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	log.Printf("Verification email sent to %s (ID: %s)", to, sent.Id)
	return nil
}

// logMailer is the dev-mode fallback.
type logMailer struct{}

func (m *logMailer) SendOTP(to, name, code string) error {
	log.Printf("[Dev Mode] Verification code for %s: %s", to, code)
	return nil
}
