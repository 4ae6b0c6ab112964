package shell

import (
	"context"
	"fmt"
	"strings"
)

// Command is an external program invocation.
type Command struct {
	// Name is the program to execute.
	Name string
	// Args are the program arguments in order.
	Args []string
	// Stdin is optional text fed to the program standard input.
	Stdin string
	// Env overrides variables of the inherited process environment.
	Env map[string]string
	// Dir is the working directory, empty means the current one.
	Dir string
	// NoCheck disables converting a non-zero exit code into an error.
	NoCheck bool
}

// Argv returns the full command line.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

func (c Command) String() string {
	return fmt.Sprintf("%q", c.Argv())
}

// Runner knows how to run external commands.
type Runner interface {
	// Run runs the command and returns its trimmed standard output.
	// A non-zero exit code returns a *CommandError unless the command has NoCheck set.
	Run(ctx context.Context, cmd Command) (string, error)
}

// CommandError is returned when a command exits with a non-zero code.
type CommandError struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[bkup] Failed to run command: %q\n", e.Command)
	fmt.Fprintf(&b, "[bkup] Return code: %d\n\n", e.ExitCode)
	fmt.Fprintf(&b, "[bkup] Stdout:\n%s\n", e.Stdout)
	fmt.Fprintf(&b, "[bkup] Stderr:\n%s", e.Stderr)
	return b.String()
}
