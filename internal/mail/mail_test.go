package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetMessage(t *testing.T) {
	msg := PasswordResetMessage("a@x.com", "http://localhost/api/v1/users/resetPassword/abc")
	assert.Equal(t, "a@x.com", msg.To)
	assert.Contains(t, msg.Subject, "10 min")
	assert.Contains(t, msg.Body, "http://localhost/api/v1/users/resetPassword/abc")
}

func TestSMTPSender_Build(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 2525, From: "Natours <hello@natours.io>"})
	e := s.build(Message{To: "a@x.com", Subject: "hi", Body: "body"})

	assert.Equal(t, "Natours <hello@natours.io>", e.From)
	assert.Equal(t, []string{"a@x.com"}, e.To)
	assert.Equal(t, "hi", e.Subject)
	assert.Equal(t, []byte("body"), e.Text)
	assert.Equal(t, "smtp.example.com:2525", s.addr())
}

func TestSMTPSender_Send(t *testing.T) {
	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1}).Send(ctx, Message{To: "a@x.com"})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no recipient", func(t *testing.T) {
		err := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1}).Send(context.Background(), Message{})
		assert.Error(t, err)
	})

	t.Run("unreachable relay", func(t *testing.T) {
		s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "hello@natours.io"})
		err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "s", Body: "b"})
		require.Error(t, err)
	})
}
