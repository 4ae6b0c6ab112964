package model

import "strings"

// FailureKind is the closed set of failure kinds a task can produce.
type FailureKind string

const (
	// FailureKindCommand is an external program that exited with a non-zero code.
	FailureKindCommand FailureKind = "command"
	// FailureKindGeneric is any other failure raised inside a task.
	FailureKindGeneric FailureKind = "generic"
)

// Failure is a single recorded task failure.
type Failure struct {
	Kind FailureKind
	// Task is the name of the task that produced the failure.
	Task string
	// Message is the rendered failure text used on the notification.
	Message string

	// Command failure details, only set with FailureKindCommand.
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Failures is the ordered list of failures of a run.
type Failures []Failure

// Text returns the concatenation of every failure message with the
// surrounding whitespace removed.
func (f Failures) Text() string {
	var b strings.Builder
	for _, failure := range f {
		b.WriteString(failure.Message)
	}
	return strings.TrimSpace(b.String())
}
