package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/youruser/staffbadge/internal/config"
)

// ErrDisabled is returned by SendBadge when no sender credentials are configured.
var ErrDisabled = errors.New("email disabled: sender credentials not set")

// Sender delivers a rendered badge to its owner.
type Sender interface {
	SendBadge(ctx context.Context, to, filename string, png []byte) error
}

// SMTPSender sends badges over implicit TLS using the configured sender
// account for both the From address and authentication.
type SMTPSender struct {
	cfg       config.SMTPConfig
	signature string
}

// NewSMTPSender creates a sender. signature closes the message body.
func NewSMTPSender(cfg config.SMTPConfig, signature string) *SMTPSender {
	return &SMTPSender{cfg: cfg, signature: signature}
}

// SendBadge mails png as an attachment named filename.
func (s *SMTPSender) SendBadge(ctx context.Context, to, filename string, png []byte) error {
	if !s.cfg.Enabled() {
		return ErrDisabled
	}

	msg, err := s.buildMessage(to, filename, png)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host,
		gomail.WithPort(s.cfg.Port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
		gomail.WithTimeout(s.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(to, filename string, png []byte) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.Username); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(s.cfg.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, "Hello,\n\nAttached is your Staff ID Card.\n\n"+s.signature)

	if err := msg.AttachReader(filename, bytes.NewReader(png)); err != nil {
		return nil, fmt.Errorf("smtp attach: %w", err)
	}
	return msg, nil
}
