package infra

import (
	"bytes"
	"errors"
	"fmt"
	"net/smtp"
	"net/textproto"
	"strings"

	"floreria/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailDisabled is returned when SMTP_HOST is empty.
var ErrMailDisabled = errors.New("mailer: smtp not configured")

// ErrMessageRejected wraps a reply that refuses this message (bad mailbox,
// size, address syntax). Resending it will not help and the relay is fine.
var ErrMessageRejected = errors.New("mailer: message rejected")

func classifySendErr(err error) error {
	var reply *textproto.Error
	if errors.As(err, &reply) && reply.Code >= 550 && reply.Code <= 553 {
		return fmt.Errorf("%w: %v", ErrMessageRejected, err)
	}
	return err
}

// Attachment is an in-memory file sent with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          []string
	Subject     string
	Text        string
	Attachments []Attachment
}

// Mailer sends messages through the configured SMTP relay behind a circuit
// breaker.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	cb       *CircuitBreaker
	send     func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config, cb *CircuitBreaker) *Mailer {
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig())
	}
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       cb,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// Breaker exposes the relay breaker for /health.
func (m *Mailer) Breaker() *CircuitBreaker { return m.cb }

func (m *Mailer) Send(msg Message) error {
	if !m.Enabled() {
		return ErrMailDisabled
	}
	if len(msg.To) == 0 {
		return errors.New("mailer: no recipients")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	for _, a := range msg.Attachments {
		if _, err := e.Attach(bytes.NewReader(a.Data), a.Filename, a.ContentType); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", a.Filename, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.cb.Execute(func() error {
		if err := m.send(e, m.addr, auth); err != nil {
			return fmt.Errorf("mailer: send to %s: %w", strings.Join(msg.To, ","), classifySendErr(err))
		}
		return nil
	})
}
