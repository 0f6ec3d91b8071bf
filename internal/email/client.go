package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caminemosjuntos/counseling/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultSendTimeout = 15 * time.Second

var ErrNoRecipients = errors.New("message has no recipients")

type ClientParams struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the site address every message is sent from
	From        string
	SendTimeout time.Duration
	// TLSPolicy defaults to mail.TLSMandatory
	TLSPolicy mail.TLSPolicy
}

// Client delivers messages over SMTP with STARTTLS and PLAIN auth.
// A go-mail client holds its connection, so every send gets its own.
type Client struct {
	host        string
	opts        []mail.Option
	from        string
	sendTimeout time.Duration
}

func NewClient(params ClientParams) (*Client, error) {
	sendTimeout := params.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}

	opts := []mail.Option{
		mail.WithPort(params.Port),
		mail.WithTLSPolicy(params.TLSPolicy),
		mail.WithTimeout(sendTimeout),
	}
	if params.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(params.Username),
			mail.WithPassword(params.Password),
		)
	}

	// fail on bad settings at startup, not on the first send
	if _, err := mail.NewClient(params.Host, opts...); err != nil {
		return nil, fmt.Errorf("new smtp client: %w", err)
	}

	return &Client{
		host:        params.Host,
		opts:        opts,
		from:        params.From,
		sendTimeout: sendTimeout,
	}, nil
}

func (c *Client) Send(ctx context.Context, m Message) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "email.Send")
	span.SetAttributes(attribute.String("subject", m.Subject), attribute.Int("recipients", len(m.To)))
	defer func() { tracing.EndSpan(span, err) }()

	msg, err := c.buildMsg(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	smtpClient, err := mail.NewClient(c.host, c.opts...)
	if err != nil {
		return fmt.Errorf("new smtp client: %w", err)
	}
	if err := smtpClient.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send [%s]: %w", m.Subject, err)
	}

	log.Debugf("email [%s] sent to %d recipients", m.Subject, len(m.To))
	return nil
}

func (c *Client) buildMsg(m Message) (*mail.Msg, error) {
	if len(m.To) == 0 {
		return nil, ErrNoRecipients
	}

	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return nil, fmt.Errorf("set from [%s]: %w", c.from, err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return nil, fmt.Errorf("set reply-to [%s]: %w", m.ReplyTo, err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)

	return msg, nil
}
