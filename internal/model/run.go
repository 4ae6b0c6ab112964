package model

import "time"

// RunStatus represents the state of a backup run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// TaskStatus represents the outcome of a task inside a run.
type TaskStatus string

const (
	TaskStatusDone   TaskStatus = "done"
	TaskStatusFailed TaskStatus = "failed"
)

// Run is a single execution of the backup task catalog.
type Run struct {
	ID         string
	Status     RunStatus
	DryRun     bool
	Notified   bool
	Subject    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Tasks      []TaskResult
}

// Failures returns all the failures of the run tasks in order.
func (r Run) Failures() Failures {
	var fs Failures
	for _, t := range r.Tasks {
		fs = append(fs, t.Failures...)
	}
	return fs
}

// TaskResult is the outcome of a single catalog task. No failures means success.
type TaskResult struct {
	Sequence   int
	Name       string
	Status     TaskStatus
	Failures   Failures
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewTaskResult returns a task result with the status derived from the failures.
func NewTaskResult(sequence int, name string, failures Failures, startedAt, finishedAt time.Time) TaskResult {
	status := TaskStatusDone
	if len(failures) > 0 {
		status = TaskStatusFailed
	}

	return TaskResult{
		Sequence:   sequence,
		Name:       name,
		Status:     status,
		Failures:   failures,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
}
