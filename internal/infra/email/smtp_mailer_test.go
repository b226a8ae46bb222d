package email

import (
	"context"
	"log/slog"
	"net/smtp"
	"testing"

	"market/config"
	"market/internal/domain/service"
	"market/internal/errors"

	jwemail "github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedSend struct {
	email *jwemail.Email
	addr  string
	auth  smtp.Auth
}

func newCapturingMailer(t *testing.T, fail error) (*smtpMailer, *capturedSend) {
	t.Helper()

	captured := &capturedSend{}
	cfg := &config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "user", Password: "pass", From: "shop@example.com"}
	m := newSMTPMailer(cfg, slog.Default(), func(e *jwemail.Email, addr string, auth smtp.Auth) error {
		captured.email = e
		captured.addr = addr
		captured.auth = auth

		return fail
	})

	return m, captured
}

func TestSMTPMailer_Send(t *testing.T) {
	m, captured := newCapturingMailer(t, nil)

	err := m.Send(context.Background(), &service.Message{
		To:      []string{"a@x.com"},
		Subject: "Welcome",
		Text:    "hello",
		HTML:    "<p>hello</p>",
		Attachments: []service.Attachment{
			{Filename: "report.csv", ContentType: "text/csv", Content: []byte("a,b\n")},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, captured.email)
	assert.Equal(t, "smtp.example.com:587", captured.addr)
	assert.NotNil(t, captured.auth)
	assert.Equal(t, "shop@example.com", captured.email.From)
	assert.Equal(t, []string{"a@x.com"}, captured.email.To)
	assert.Equal(t, "Welcome", captured.email.Subject)
	assert.Equal(t, "hello", string(captured.email.Text))
	assert.Equal(t, "<p>hello</p>", string(captured.email.HTML))
	require.Len(t, captured.email.Attachments, 1)
	assert.Equal(t, "report.csv", captured.email.Attachments[0].Filename)

	raw, err := captured.email.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: Welcome")
}

func TestSMTPMailer_SendFailure(t *testing.T) {
	m, _ := newCapturingMailer(t, errors.New("connection refused"))

	err := m.Send(context.Background(), &service.Message{To: []string{"a@x.com"}, Subject: "s", Text: "t"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPMailer_Rejects(t *testing.T) {
	m, captured := newCapturingMailer(t, nil)

	err := m.Send(context.Background(), &service.Message{Subject: "no recipients"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = m.Send(ctx, &service.Message{To: []string{"a@x.com"}})
	assert.ErrorIs(t, err, context.Canceled)

	assert.Nil(t, captured.email)
}

func TestNewMailer_DisabledWithoutHost(t *testing.T) {
	mailer := NewMailer(Params{Config: &config.Config{}, Logger: slog.Default()})

	_, ok := mailer.(*noopMailer)
	require.True(t, ok)
	assert.NoError(t, mailer.Send(context.Background(), &service.Message{To: []string{"a@x.com"}}))
}
