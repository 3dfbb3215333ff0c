package notifier

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/AnthoniusHendriyanto/blogger-auth/config"
)

// Mailer delivers one-time codes over SMTP. Delivery failure is the
// caller's problem to log; it never blocks token or session logic.
type Mailer struct {
	client *mail.Client
	cfg    config.MailConfig
	logger *zap.Logger
}

func NewMailer(cfg config.MailConfig, logger *zap.Logger) (*Mailer, error) {
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("SMTP_FROM is required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &Mailer{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (m *Mailer) SendConfirmationCode(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(
		"Thanks for registering!\n\nTo finish registration, follow the link:\n%s/confirm-email?code=%s\n",
		m.cfg.BaseURL, code)

	return m.send(ctx, email, "Confirm your account", body)
}

func (m *Mailer) SendRecoveryCode(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(
		"To set a new password, follow the link:\n%s/password-recovery?recoveryCode=%s\n\nIf you did not request this, ignore this message.\n",
		m.cfg.BaseURL, code)

	return m.send(ctx, email, "Password recovery", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.FromAddress); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Debug("mail sent", zap.String("subject", subject))

	return nil
}
