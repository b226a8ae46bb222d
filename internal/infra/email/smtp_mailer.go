// Package email delivers outgoing mail over SMTP.
package email

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"

	"market/config"
	deliverycontext "market/internal/delivery/context"
	"market/internal/domain/service"
	"market/internal/errors"

	jwemail "github.com/jordan-wright/email"
	"go.uber.org/fx"
)

type sendFunc func(e *jwemail.Email, addr string, auth smtp.Auth) error

func defaultSend(e *jwemail.Email, addr string, auth smtp.Auth) error {
	return e.Send(addr, auth)
}

// smtpMailer sends messages through a single configured SMTP relay.
type smtpMailer struct {
	addr   string
	from   string
	auth   smtp.Auth
	send   sendFunc
	logger *slog.Logger
}

// Params holds dependencies for the mailer, injected by Fx.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewMailer returns an SMTP mailer, or a mailer that only logs when SMTP is not configured.
func NewMailer(params Params) service.Mailer {
	if !params.Config.MailEnabled() {
		return &noopMailer{logger: params.Logger}
	}

	return newSMTPMailer(params.Config.SMTP, params.Logger, defaultSend)
}

func newSMTPMailer(cfg *config.SMTPConfig, logger *slog.Logger, send sendFunc) *smtpMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &smtpMailer{
		addr:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:   cfg.From,
		auth:   auth,
		send:   send,
		logger: logger,
	}
}

// Send builds the MIME message and hands it to the relay.
func (m *smtpMailer) Send(ctx context.Context, msg *service.Message) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	if len(msg.To) == 0 {
		return errors.New("email has no recipients")
	}

	e, err := m.build(msg)
	if err != nil {
		return err
	}

	if err := m.send(e, m.addr, m.auth); err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, m.logger).Error("Failed to send email",
			slog.Any("to", msg.To),
			slog.String("subject", msg.Subject),
			slog.Any("error", err),
		)

		return errors.Wrap(err, "failed to send email")
	}

	deliverycontext.GetLoggerOrDefault(ctx, m.logger).Info("Email sent",
		slog.Any("to", msg.To),
		slog.String("subject", msg.Subject),
	)

	return nil
}

func (m *smtpMailer) build(msg *service.Message) (*jwemail.Email, error) {
	e := jwemail.NewEmail()
	e.From = m.from
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}

	for _, att := range msg.Attachments {
		if _, err := e.Attach(bytes.NewReader(att.Content), att.Filename, att.ContentType); err != nil {
			return nil, errors.Wrapf(err, "failed to attach %s", att.Filename)
		}
	}

	return e, nil
}

// noopMailer stands in when no SMTP relay is configured.
type noopMailer struct {
	logger *slog.Logger
}

func (m *noopMailer) Send(ctx context.Context, msg *service.Message) error {
	deliverycontext.GetLoggerOrDefault(ctx, m.logger).Debug("Email delivery disabled, dropping message",
		slog.Any("to", msg.To),
		slog.String("subject", msg.Subject),
	)

	return nil
}
