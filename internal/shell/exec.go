package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/utils/env"
)

// ExecRunnerConfig is the configuration for the exec runner.
type ExecRunnerConfig struct {
	// Environ returns the inherited environment (default: os.Environ).
	Environ func() []string
	Logger  log.Logger
}

func (c *ExecRunnerConfig) defaults() error {
	if c.Environ == nil {
		c.Environ = os.Environ
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "shell.Exec"})
	return nil
}

// ExecRunner runs commands as OS processes.
type ExecRunner struct {
	environ func() []string
	logger  log.Logger
}

// NewExecRunner creates a new exec runner.
func NewExecRunner(cfg ExecRunnerConfig) (*ExecRunner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &ExecRunner{
		environ: cfg.Environ,
		logger:  cfg.Logger,
	}, nil
}

// Run starts the command, feeds the optional stdin and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	logger := r.logger.WithCtxValues(ctx)
	logger.Infof("Running command: %s", cmd)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdin = strings.NewReader(cmd.Stdin)
	if len(cmd.Env) > 0 {
		c.Env = env.ToList(env.MergeMaps(env.FromList(r.environ()), cmd.Env))
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	outStr := strings.TrimSpace(stdout.String())
	errStr := strings.TrimSpace(stderr.String())

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("command %s interrupted: %w", cmd.Name, ctx.Err())
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("could not run command %s: %w", cmd, err)
		}

		if !cmd.NoCheck {
			cmdErr := &CommandError{
				Command:  cmd.Argv(),
				ExitCode: exitErr.ExitCode(),
				Stdout:   outStr,
				Stderr:   errStr,
			}
			logger.Errorf("%s", cmdErr)
			return "", cmdErr
		}

		logger.Debugf("Ignoring exit code %d of %s", exitErr.ExitCode(), cmd)
	}

	if outStr != "" || errStr != "" {
		logger.Infof("[bkup] Stdout:\n%s\n[bkup] Stderr:\n%s", outStr, errStr)
	}

	return outStr, nil
}
