package mailer

import (
	"context"
	"fmt"

	"auth-service/pkg/utils"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Mailer sends a plain-text email and returns a confirmation message for
// the caller to relay to the client.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

type smtpMailer struct {
	cfg utils.EmailConfig
	log *zap.Logger
}

func NewSMTPMailer(cfg utils.EmailConfig, log *zap.Logger) Mailer {
	return &smtpMailer{
		cfg: cfg,
		log: log.With(zap.String("component", "mailer")),
	}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) (string, error) {
	msg := mail.NewMsg()

	if err := msg.From(m.cfg.From); err != nil {
		return "", fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return "", fmt.Errorf("set to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	// Implicit TLS for port 465, STARTTLS otherwise
	if m.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if m.cfg.User != "" && m.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return "", fmt.Errorf("create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.log.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return "", fmt.Errorf("send email to %s: %w", to, err)
	}

	m.log.Info("Email sent", zap.String("to", to), zap.String("subject", subject))

	return "Password reset OTP sent to your email", nil
}
