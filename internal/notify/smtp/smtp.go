package smtp

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/slok/bkup/internal/log"
)

// NotifierConfig is the configuration for the SMTP notifier.
type NotifierConfig struct {
	Host string
	// Port is an implicit TLS port (e.g. 465).
	Port     int
	Address  string
	Password string
	Logger   log.Logger
}

func (c *NotifierConfig) defaults() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 {
		return fmt.Errorf("port is required")
	}
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "notify.SMTP"})
	return nil
}

// Notifier sends notifications by email from the configured account to itself.
type Notifier struct {
	host     string
	port     int
	address  string
	password string
	logger   log.Logger
}

// NewNotifier creates a new SMTP notifier.
func NewNotifier(cfg NotifierConfig) (*Notifier, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Notifier{
		host:     cfg.Host,
		port:     cfg.Port,
		address:  cfg.Address,
		password: cfg.Password,
		logger:   cfg.Logger,
	}, nil
}

// Notify sends a single message on an authenticated TLS session.
func (n *Notifier) Notify(ctx context.Context, subject, body string) error {
	msg, err := n.message(subject, body)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(n.host,
		mail.WithPort(n.port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.address),
		mail.WithPassword(n.password),
	)
	if err != nil {
		return fmt.Errorf("could not create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("could not send mail: %w", err)
	}

	n.logger.Infof("Sent notification %q to %s", subject, n.address)
	return nil
}

func (n *Notifier) message(subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.address); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(n.address); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return msg, nil
}
