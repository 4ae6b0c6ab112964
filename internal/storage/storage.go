package storage

import (
	"context"

	"github.com/slok/bkup/internal/model"
)

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name RunRepository

// RunRepository is the interface for the backup runs journal.
type RunRepository interface {
	// CreateRun stores a new run, its tasks are ignored.
	CreateRun(ctx context.Context, r model.Run) error
	// AddTaskResult appends a task result to a stored run.
	AddTaskResult(ctx context.Context, runID string, t model.TaskResult) error
	// UpdateRun updates the run state fields, its tasks are ignored.
	UpdateRun(ctx context.Context, r model.Run) error
	// GetRun returns a run with its task results.
	GetRun(ctx context.Context, id string) (*model.Run, error)
	// ListRuns returns the runs matching the options newest first, without task results.
	ListRuns(ctx context.Context, opts ListRunsOpts) ([]model.Run, error)
}

// ListRunsOpts are the run listing options.
type ListRunsOpts struct {
	// Status only returns runs with this status when set.
	Status *model.RunStatus
	// Limit caps the returned runs, 0 means no limit.
	Limit int
}
