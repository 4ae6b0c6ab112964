package notify

import (
	"context"
	"fmt"

	"github.com/slok/bkup/internal/log"
)

//go:generate mockery --case underscore --output notifymock --outpkg notifymock --name Notifier

// Notifier sends the run summary.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// LoggerNotifierConfig is the configuration for the logger notifier.
type LoggerNotifierConfig struct {
	Logger log.Logger
}

func (c *LoggerNotifierConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "notify.Logger"})
	return nil
}

// LoggerNotifier logs the notification instead of sending it, used on dry runs.
type LoggerNotifier struct {
	logger log.Logger
}

// NewLoggerNotifier creates a new logger notifier.
func NewLoggerNotifier(cfg LoggerNotifierConfig) (*LoggerNotifier, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &LoggerNotifier{logger: cfg.Logger}, nil
}

func (n *LoggerNotifier) Notify(ctx context.Context, subject, body string) error {
	n.logger.Infof("Notification %q:\n%s", subject, body)
	return nil
}
