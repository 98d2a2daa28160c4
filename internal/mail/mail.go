// Package mail sends transactional email.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"
	"github.com/samber/oops"
)

// Message is a plain-text email to one recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers msg. The SMTP client does not take a context, so ctx is only
// checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return oops.Code("MAIL_NO_RECIPIENT").Errorf("message has no recipient")
	}

	e := s.build(msg)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := e.Send(s.addr(), auth); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("host", s.cfg.Host).Wrap(err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)
	return e
}

func (s *SMTPSender) addr() string {
	return s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
}

// PasswordResetMessage builds the email carrying a reset link.
func PasswordResetMessage(to, resetURL string) Message {
	return Message{
		To:      to,
		Subject: "Your password reset token (valid for 10 min)",
		Body: fmt.Sprintf(
			"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s\n"+
				"If you didn't forget your password, please ignore this email.",
			resetURL,
		),
	}
}
