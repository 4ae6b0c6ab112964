package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/shell"
)

// HandlerFunc decides the output of a command run by the fake runner.
type HandlerFunc func(cmd shell.Command) (string, error)

// RunnerConfig is the configuration for the fake runner.
type RunnerConfig struct {
	// Handler is optional, without it every command succeeds with no output.
	Handler HandlerFunc
	Logger  log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Handler == nil {
		c.Handler = func(shell.Command) (string, error) { return "", nil }
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "shell.Fake"})
	return nil
}

// Runner is a fake implementation of shell.Runner.
// It records the commands instead of executing them, used on dry runs and tests.
type Runner struct {
	handler  HandlerFunc
	commands []shell.Command
	mu       sync.Mutex
	logger   log.Logger
}

// NewRunner creates a new fake runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Runner{
		handler: cfg.Handler,
		logger:  cfg.Logger,
	}, nil
}

// Run records the command and returns the handler result.
func (r *Runner) Run(ctx context.Context, cmd shell.Command) (string, error) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	r.logger.WithCtxValues(ctx).Infof("[dry-run] %s", cmd)

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("command %s interrupted: %w", cmd.Name, err)
	}

	return r.handler(cmd)
}

// Commands returns a copy of the recorded commands in run order.
func (r *Runner) Commands() []shell.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmds := make([]shell.Command, len(r.commands))
	copy(cmds, r.commands)
	return cmds
}

// FailOn returns a handler that fails with a command error (exit code 1) for
// the commands matched by match, honoring NoCheck like a real runner.
func FailOn(match func(cmd shell.Command) bool) HandlerFunc {
	return func(cmd shell.Command) (string, error) {
		if !match(cmd) || cmd.NoCheck {
			return "", nil
		}

		return "", &shell.CommandError{
			Command:  cmd.Argv(),
			ExitCode: 1,
			Stdout:   "",
			Stderr:   fmt.Sprintf("%s failed", cmd.Name),
		}
	}
}
