// Package storagetest has the behavior checks every storage.RunRepository
// implementation must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/storage"
)

// TestRunRepository runs the repository behavior checks. newRepo must return
// a new empty repository on every call.
func TestRunRepository(t *testing.T, newRepo func(t *testing.T) storage.RunRepository) {
	t0 := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	cmdFailure := model.Failure{
		Kind:     model.FailureKindCommand,
		Task:     "snapshot-dirs/Music",
		Message:  "[bkup] Failed to run command",
		Command:  []string{"restic", "backup", "/home/alex/Music"},
		ExitCode: 3,
		Stdout:   "out",
		Stderr:   "err",
	}
	genericFailure := model.Failure{
		Kind:    model.FailureKindGeneric,
		Task:    "snapshot-dirs/build",
		Message: "boom",
	}

	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo storage.RunRepository)
	}{
		"Creating and getting a run should work.": {
			actions: func(ctx context.Context, t *testing.T, repo storage.RunRepository) {
				run := model.Run{ID: "run-1", Status: model.RunStatusRunning, DryRun: true, StartedAt: t0}
				require.NoError(t, repo.CreateRun(ctx, run))

				got, err := repo.GetRun(ctx, "run-1")
				require.NoError(t, err)
				assert.Equal(t, "run-1", got.ID)
				assert.Equal(t, model.RunStatusRunning, got.Status)
				assert.True(t, got.DryRun)
				assert.Equal(t, t0, got.StartedAt)
				assert.Nil(t, got.FinishedAt)
				assert.Empty(t, got.Tasks)
			},
		},

		"Creating a duplicated run should fail.": {
			actions: func(ctx context.Context, t *testing.T, repo storage.RunRepository) {
				run := model.Run{ID: "run-1", Status: model.RunStatusRunning, StartedAt: t0}
				require.NoError(t, repo.CreateRun(ctx, run))

				err := repo.CreateRun(ctx, run)
				assert.True(t, errors.Is(err, model.ErrAlreadyExists))
			},
		},

		"Getting a missing run should fail with not found.": {
			actions: func(ctx context.Context, t *testing.T, repo storage.RunRepository) {
				_, err := repo.GetRun(ctx, "missing")
				assert.True(t, errors.Is(err, model.ErrNotFound))
			},
		},

		"Task results should be returned in order with their failures.": {
			actions: func(ctx context.Context, t *testing.T, repo storage.RunRepository) {
				require.NoError(t, repo.CreateRun(ctx, model.Run{ID: "run-1", Status: model.RunStatusRunning, StartedAt: t0}))

				ok := model.NewTaskResult(1, "commit-notes", nil, t0, t0)
				failed := model.NewTaskResult(2, "snapshot-dirs", model.Failures{cmdFailure, genericFailure}, t0, t1)
				require.NoError(t, repo.AddTaskResult(ctx, "run-1", ok))
				require.NoError(t, repo.AddTaskResult(ctx, "run-1", failed))

				got, err := repo.GetRun(ctx, "run-1")
				require.NoError(t, err)
				require.Len(t, got.Tasks, 2)
				assert.Equal(t, ok, got.Tasks[0])
				assert.Equal(t, failed, got.Tasks[1])
				assert.Equal(t, model.Failures{cmdFailure, genericFailure}, got.Failures())
			},
		},

		"Adding a task result to a missing run should fail with not found.": {
			actions: func(ctx context.Context, t *testing.T, repo storage.RunRepository) {
				err := repo.AddTaskResult(ctx, "missing", model.NewTaskResult(1, "x", nil, t0, t0))
				assert.True(t, errors.Is(err, model.ErrNotFound))
			},
		},

		"Updating a run should keep its task results.": {
			actions: func(ctx context.Context, t *testing.T, repo storage.RunRepository) {
				run := model.Run{ID: "run-1", Status: model.RunStatusRunning, StartedAt: t0}
				require.NoError(t, repo.CreateRun(ctx, run))
				require.NoError(t, repo.AddTaskResult(ctx, "run-1", model.NewTaskResult(1, "x", nil, t0, t0)))

				run.Status = model.RunStatusSucceeded
				run.Notified = true
				run.Subject = "Backup succeeded"
				run.FinishedAt = &t1
				require.NoError(t, repo.UpdateRun(ctx, run))

				got, err := repo.GetRun(ctx, "run-1")
				require.NoError(t, err)
				assert.Equal(t, model.RunStatusSucceeded, got.Status)
				assert.True(t, got.Notified)
				assert.Equal(t, "Backup succeeded", got.Subject)
				require.NotNil(t, got.FinishedAt)
				assert.Equal(t, t1, *got.FinishedAt)
				assert.Len(t, got.Tasks, 1)
			},
		},

		"Updating a missing run should fail with not found.": {
			actions: func(ctx context.Context, t *testing.T, repo storage.RunRepository) {
				err := repo.UpdateRun(ctx, model.Run{ID: "missing"})
				assert.True(t, errors.Is(err, model.ErrNotFound))
			},
		},

		"Listing runs should return them newest first without tasks.": {
			actions: func(ctx context.Context, t *testing.T, repo storage.RunRepository) {
				require.NoError(t, repo.CreateRun(ctx, model.Run{ID: "old", Status: model.RunStatusFailed, StartedAt: t0}))
				require.NoError(t, repo.CreateRun(ctx, model.Run{ID: "new", Status: model.RunStatusSucceeded, StartedAt: t1}))
				require.NoError(t, repo.AddTaskResult(ctx, "new", model.NewTaskResult(1, "x", nil, t1, t1)))

				runs, err := repo.ListRuns(ctx, storage.ListRunsOpts{})
				require.NoError(t, err)
				require.Len(t, runs, 2)
				assert.Equal(t, "new", runs[0].ID)
				assert.Equal(t, "old", runs[1].ID)
				assert.Empty(t, runs[0].Tasks)
			},
		},

		"Listing runs should filter by status and limit newest first.": {
			actions: func(ctx context.Context, t *testing.T, repo storage.RunRepository) {
				t2 := t1.Add(time.Hour)
				require.NoError(t, repo.CreateRun(ctx, model.Run{ID: "f1", Status: model.RunStatusFailed, StartedAt: t0}))
				require.NoError(t, repo.CreateRun(ctx, model.Run{ID: "s1", Status: model.RunStatusSucceeded, StartedAt: t1}))
				require.NoError(t, repo.CreateRun(ctx, model.Run{ID: "f2", Status: model.RunStatusFailed, StartedAt: t2}))

				failed := model.RunStatusFailed
				runs, err := repo.ListRuns(ctx, storage.ListRunsOpts{Status: &failed})
				require.NoError(t, err)
				require.Len(t, runs, 2)
				assert.Equal(t, "f2", runs[0].ID)
				assert.Equal(t, "f1", runs[1].ID)

				runs, err = repo.ListRuns(ctx, storage.ListRunsOpts{Limit: 2})
				require.NoError(t, err)
				require.Len(t, runs, 2)
				assert.Equal(t, "f2", runs[0].ID)
				assert.Equal(t, "s1", runs[1].ID)

				runs, err = repo.ListRuns(ctx, storage.ListRunsOpts{Status: &failed, Limit: 1})
				require.NoError(t, err)
				require.Len(t, runs, 1)
				assert.Equal(t, "f2", runs[0].ID)
			},
		},

		"Listing an empty journal should return no runs.": {
			actions: func(ctx context.Context, t *testing.T, repo storage.RunRepository) {
				runs, err := repo.ListRuns(ctx, storage.ListRunsOpts{})
				require.NoError(t, err)
				assert.Empty(t, runs)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test.actions(context.Background(), t, newRepo(t))
		})
	}
}
