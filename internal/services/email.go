package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangang/feedbacklens/internal/config"
	"github.com/wneessen/go-mail"
)

type EmailService struct {
	cfg *config.EmailConfig
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled reports whether a server, sender and at least one recipient are set.
func (s *EmailService) Enabled() bool {
	return s.cfg.Host != "" && s.cfg.From != "" && len(s.cfg.To) > 0
}

func (s *EmailService) SendAlert(ctx context.Context, task *AlertTask) error {
	msg, err := s.buildAlertMessage(task)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func (s *EmailService) buildAlertMessage(task *AlertTask) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(s.cfg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(fmt.Sprintf("[FeedbackLens] %d-star review needs attention", task.Rating))
	msg.SetBodyString(mail.TypeTextPlain, buildAlertMessage(task))
	return msg, nil
}

func (s *EmailService) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(s.cfg.Port)}
	if s.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if strings.TrimSpace(s.cfg.Username) != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}
