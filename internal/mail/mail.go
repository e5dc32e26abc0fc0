package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	gomail "github.com/wneessen/go-mail"

	"github.com/2beens/serjblog/internal/telemetry/tracing"
)

var ErrNoRecipients = errors.New("no recipients")

type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	return nil
}

// Sender delivers a plain text message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpDialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

type SMTPParams struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

var _ Sender = (*SMTPSender)(nil)

type SMTPSender struct {
	from   string
	client smtpDialer
}

func NewSMTPSender(params SMTPParams) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if params.Port > 0 {
		opts = append(opts, gomail.WithPort(params.Port))
	}
	if params.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(params.Username),
			gomail.WithPassword(params.Password),
		)
	}

	client, err := gomail.NewClient(params.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("new smtp client: %w", err)
	}

	return &SMTPSender{
		from:   params.From,
		client: client,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "mail.smtp.send")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if err := msg.validate(); err != nil {
		return err
	}
	if msg.From == "" {
		msg.From = s.from
	}

	m, err := buildMsg(msg)
	if err != nil {
		return err
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Debugf("mail [%s] sent to %d recipient(s)", msg.Subject, len(msg.To))

	return nil
}

func buildMsg(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("set from [%s]: %w", msg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("set to [%s]: %w", strings.Join(msg.To, ","), err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

var _ Sender = (*ConsoleSender)(nil)

// ConsoleSender only logs the messages. Used in development and when
// no smtp host is configured.
type ConsoleSender struct {
	from string
}

func NewConsoleSender(from string) *ConsoleSender {
	return &ConsoleSender{from: from}
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if msg.From == "" {
		msg.From = s.from
	}

	log.WithFields(log.Fields{
		"from":    msg.From,
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
	}).Infof("mail:\n%s", msg.Body)

	return nil
}
