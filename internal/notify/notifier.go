// Package notify delivers transactional e-mails. Callers treat delivery as
// best-effort: a failed send is logged and never fails the owning operation.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"litverse-be/internal/config"
	"litverse-be/internal/logger"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// mailSender is the part of *mail.Client the notifier uses.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type smtpNotifier struct {
	from   string
	client mailSender
}

func NewSMTPNotifier(cfg *config.Config) (Notifier, error) {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", cfg.SMTPPort, err)
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	from := cfg.MailFrom
	if from == "" {
		from = cfg.SMTPUser
	}

	return &smtpNotifier{from: from, client: client}, nil
}

func (n *smtpNotifier) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}

	msg, err := buildMessage(n.from, to, subject, body)
	if err != nil {
		return err
	}

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	logger.FromCtx(ctx).Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

func buildMessage(from, to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("sender %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

type logNotifier struct{}

// NewLogNotifier writes messages to the log instead of sending them. Used when
// no SMTP host is configured.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}
	logger.FromCtx(ctx).Info("email suppressed (no smtp host)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_len", len(body)),
	)
	return nil
}

// NewFromConfig picks the SMTP notifier when a host is configured. A broken
// SMTP setup falls back to logging so e-mail stays best-effort.
func NewFromConfig(cfg *config.Config) Notifier {
	if cfg.SMTPHost == "" {
		return NewLogNotifier()
	}
	n, err := NewSMTPNotifier(cfg)
	if err != nil {
		logger.L().Warn("smtp disabled, logging e-mails instead", zap.Error(err))
		return NewLogNotifier()
	}
	return n
}
