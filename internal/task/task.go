package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/shell"
)

// Func is a unit of backup work.
type Func func(ctx context.Context) error

// Task is a named unit of backup work.
type Task struct {
	Name        string
	Description string
	Run         Func
}

// Failures is an error that carries failures already recorded by a task
// that wraps its own sub-tasks (e.g. one backup per directory).
type Failures model.Failures

func (f Failures) Error() string { return model.Failures(f).Text() }

// Try runs fn and converts anything it fails with into failures, it never
// propagates the failure so the next tasks can still run.
func Try(ctx context.Context, name string, fn Func) (failures model.Failures) {
	defer func() {
		if r := recover(); r != nil {
			failures = append(failures, model.Failure{
				Kind:    model.FailureKindGeneric,
				Task:    name,
				Message: fmt.Sprintf("%s: panic: %v", name, r),
			})
		}
	}()

	err := fn(ctx)
	if err == nil {
		return nil
	}

	return FailuresFromError(name, err)
}

// FailuresFromError converts an error into the failures it represents.
func FailuresFromError(name string, err error) model.Failures {
	var fs Failures
	if errors.As(err, &fs) {
		return model.Failures(fs)
	}

	var cmdErr *shell.CommandError
	if errors.As(err, &cmdErr) {
		return model.Failures{{
			Kind:     model.FailureKindCommand,
			Task:     name,
			Message:  cmdErr.Error(),
			Command:  cmdErr.Command,
			ExitCode: cmdErr.ExitCode,
			Stdout:   cmdErr.Stdout,
			Stderr:   cmdErr.Stderr,
		}}
	}

	return model.Failures{{
		Kind:    model.FailureKindGeneric,
		Task:    name,
		Message: err.Error(),
	}}
}
