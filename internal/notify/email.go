package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	mail "github.com/wneessen/go-mail"
)

type smtpRelay struct {
	Host string
	Port int
}

// wellKnown maps the service names accepted in EMAIL_SERVICE to relays.
var wellKnown = map[string]smtpRelay{
	"gmail":      {"smtp.gmail.com", 465},
	"googlemail": {"smtp.gmail.com", 465},
	"outlook":    {"smtp-mail.outlook.com", 587},
	"hotmail":    {"smtp-mail.outlook.com", 587},
	"outlook365": {"smtp.office365.com", 587},
	"yahoo":      {"smtp.mail.yahoo.com", 465},
	"aol":        {"smtp.aol.com", 587},
	"icloud":     {"smtp.mail.me.com", 587},
	"zoho":       {"smtp.zoho.com", 465},
	"fastmail":   {"smtp.fastmail.com", 465},
	"gmx":        {"mail.gmx.com", 587},
	"sendgrid":   {"smtp.sendgrid.net", 587},
	"mailgun":    {"smtp.mailgun.org", 465},
	"mailjet":    {"in-v3.mailjet.com", 587},
	"postmark":   {"smtp.postmarkapp.com", 2525},
	"brevo-smtp": {"smtp-relay.brevo.com", 587},
	"sendinblue": {"smtp-relay.brevo.com", 587},
}

const defaultSubmissionPort = 587

// ResolveService turns EMAIL_SERVICE into a relay. It accepts a
// well-known name (case-insensitive), "host" or "host:port".
func ResolveService(service string) (string, int, error) {
	s := strings.TrimSpace(service)
	if s == "" {
		return "", 0, fmt.Errorf("email service: %w", ErrMissingCredentials)
	}
	if r, ok := wellKnown[strings.ToLower(s)]; ok {
		return r.Host, r.Port, nil
	}
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		// no port given
		return s, defaultSubmissionPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("email service %q: invalid port", service)
	}
	return host, port, nil
}

type EmailConfig struct {
	Service     string
	Username    string
	Password    string
	From        string
	To          string
	InsecureTLS bool
	Timeout     time.Duration
}

// Email sends alerts through an SMTP relay.
type Email struct {
	cfg EmailConfig
}

func NewEmail(cfg EmailConfig) *Email {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Email{cfg: cfg}
}

func (e *Email) Name() string { return "email" }

func (e *Email) message(title, text string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(e.cfg.From); err != nil {
		return nil, fmt.Errorf("email from: %w", err)
	}
	if err := m.To(e.cfg.To); err != nil {
		return nil, fmt.Errorf("email to: %w", err)
	}
	m.Subject(title)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, text)
	return m, nil
}

func (e *Email) Send(ctx context.Context, title, text string) error {
	if e == nil || e.cfg.Username == "" || e.cfg.Password == "" || e.cfg.To == "" {
		return fmt.Errorf("email: %w", ErrMissingCredentials)
	}
	host, port, err := ResolveService(e.cfg.Service)
	if err != nil {
		return err
	}
	msg, err := e.message(title, text)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(e.cfg.Username),
		mail.WithPassword(e.cfg.Password),
		mail.WithTimeout(e.cfg.Timeout),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         host,
			InsecureSkipVerify: e.cfg.InsecureTLS,
		}),
	}
	if port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return fmt.Errorf("email client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("email send via %s:%d: %w", host, port, err)
	}
	return nil
}
