package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"strings"
	"time"

	"lifewood/internal/config"
	"lifewood/internal/middleware"
	"lifewood/internal/observability"

	gomail "github.com/wneessen/go-mail"
	"go.opentelemetry.io/otel/attribute"
)

// Envelope is a rendered message ready for delivery.
type Envelope struct {
	From    mail.Address
	ReplyTo string
	To      string
	Message Message
}

// Sender delivers envelopes.
type Sender interface {
	Send(ctx context.Context, env Envelope) error
}

// Mailer sends applicant decision mails.
type Mailer struct {
	sender Sender
	from   mail.Address
	simple bool
	now    func() time.Time
}

// NewMailer returns a Mailer delivering through sender.
func NewMailer(sender Sender, fromAddr, fromName string, simple bool) *Mailer {
	if fromName == "" {
		fromName = "Lifewood Recruitment"
	}
	return &Mailer{
		sender: sender,
		from:   mail.Address{Name: fromName, Address: fromAddr},
		simple: simple,
		now:    time.Now,
	}
}

// NewMailerFromConfig picks SMTP delivery when mail is enabled and a logging
// sender otherwise.
func NewMailerFromConfig(cfg *config.Config) *Mailer {
	var sender Sender = LogSender{}
	if cfg.MailEnabled {
		sender = &SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Timeout:  time.Duration(cfg.SMTPTimeoutSeconds) * time.Second,
		}
	}
	return NewMailer(sender, cfg.MailFrom, cfg.MailFromName, cfg.MailSimpleMode)
}

// Notify renders and sends the kind mail to the applicant.
func (m *Mailer) Notify(ctx context.Context, kind Kind, to, name string) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("mail recipient is required")
	}
	msg, err := Render(kind, name, m.simple, m.now())
	if err != nil {
		observability.MailDeliveries.WithLabelValues(string(kind), "failed").Inc()
		return err
	}
	env := Envelope{From: m.from, ReplyTo: m.from.Address, To: to, Message: msg}
	if err := m.sender.Send(ctx, env); err != nil {
		observability.MailDeliveries.WithLabelValues(string(kind), "failed").Inc()
		return fmt.Errorf("send %s mail: %w", kind, err)
	}
	outcome := "sent"
	if _, logged := m.sender.(LogSender); logged {
		outcome = "skipped"
	}
	observability.MailDeliveries.WithLabelValues(string(kind), outcome).Inc()
	return nil
}

// LogSender records messages in the log instead of sending them.
type LogSender struct{}

// Send logs the envelope.
func (LogSender) Send(ctx context.Context, env Envelope) error {
	middleware.Logger.InfoContext(ctx, "mail delivery disabled, message logged",
		slog.String("to", env.To),
		slog.String("subject", env.Message.Subject),
	)
	return nil
}

// DefaultSMTPTimeout bounds one delivery when SMTPSender.Timeout is unset.
const DefaultSMTPTimeout = 10 * time.Second

// SMTPSender delivers through an SMTP relay with optional PLAIN auth and
// opportunistic STARTTLS.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

func (s *SMTPSender) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultSMTPTimeout
}

// Send delivers env. The whole conversation, dial included, must finish
// within Timeout or before ctx ends.
func (s *SMTPSender) Send(ctx context.Context, env Envelope) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := observability.StartClientSpan(ctx, "smtp.send", attribute.String("smtp.host", s.Host))
	defer func() { observability.EndSpan(span, err) }()

	msg, err := BuildMessage(env, time.Now())
	if err != nil {
		return err
	}
	client, err := s.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()
	return client.DialAndSendWithContext(ctx, msg)
}

func (s *SMTPSender) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.Port),
		gomail.WithTimeout(s.timeout()),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithDialContextFunc(dialWithDeadline),
	}
	if s.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.Username),
			gomail.WithPassword(s.Password),
		)
	}
	return gomail.NewClient(s.Host, opts...)
}

// dialWithDeadline puts ctx's deadline on the connection so a relay that
// accepts and then stays silent cannot hold the greeting read open.
func dialWithDeadline(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

// BuildMessage turns env into a go-mail message. Messages with HTML get the
// text body first and the HTML as its alternative.
func BuildMessage(env Envelope, date time.Time) (*gomail.Msg, error) {
	msg := gomail.NewMsg()

	var err error
	if env.From.Name != "" {
		err = msg.FromFormat(env.From.Name, env.From.Address)
	} else {
		err = msg.From(env.From.Address)
	}
	if err != nil {
		return nil, fmt.Errorf("mail sender: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		return nil, fmt.Errorf("mail recipient: %w", err)
	}
	if env.ReplyTo != "" {
		if err := msg.ReplyTo(env.ReplyTo); err != nil {
			return nil, fmt.Errorf("mail reply-to: %w", err)
		}
	}

	msg.Subject(env.Message.Subject)
	msg.SetDateWithValue(date)
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextPlain, env.Message.Text)
	if env.Message.HTML != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, env.Message.HTML)
	}
	return msg, nil
}
