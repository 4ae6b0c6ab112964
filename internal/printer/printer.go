package printer

import (
	"time"

	"github.com/slok/bkup/internal/config"
	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/task"
)

// Printer knows how to print backup information in different formats.
type Printer interface {
	PrintRunList(runs []model.Run) error
	PrintRun(run model.Run) error
	PrintTasks(tasks []task.Task) error
	PrintConfig(cfg config.Config) error
	PrintMessage(msg string) error
}

// runItem represents a run in the list output (subset of fields).
type runItem struct {
	ID         string     `json:"id" yaml:"id"`
	Status     string     `json:"status" yaml:"status"`
	DryRun     bool       `json:"dry_run" yaml:"dryRun"`
	Subject    string     `json:"subject" yaml:"subject"`
	StartedAt  time.Time  `json:"started_at" yaml:"startedAt"`
	FinishedAt *time.Time `json:"finished_at" yaml:"finishedAt"`
}

// runOutput represents the full run output.
type runOutput struct {
	runItem `yaml:",inline"`

	Notified bool         `json:"notified" yaml:"notified"`
	Tasks    []taskOutput `json:"tasks" yaml:"tasks"`
}

// taskOutput represents a task result of a run.
type taskOutput struct {
	Sequence   int             `json:"sequence" yaml:"sequence"`
	Name       string          `json:"name" yaml:"name"`
	Status     string          `json:"status" yaml:"status"`
	StartedAt  time.Time       `json:"started_at" yaml:"startedAt"`
	FinishedAt time.Time       `json:"finished_at" yaml:"finishedAt"`
	Failures   []failureOutput `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// failureOutput represents a task failure.
type failureOutput struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Task     string   `json:"task" yaml:"task"`
	Message  string   `json:"message" yaml:"message"`
	Command  []string `json:"command,omitempty" yaml:"command,omitempty"`
	ExitCode int      `json:"exit_code,omitempty" yaml:"exitCode,omitempty"`
}

// catalogItem represents a catalog task.
type catalogItem struct {
	Order       int    `json:"order" yaml:"order"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message" yaml:"message"`
}

func newRunItem(r model.Run) runItem {
	item := runItem{
		ID:        r.ID,
		Status:    string(r.Status),
		DryRun:    r.DryRun,
		Subject:   r.Subject,
		StartedAt: r.StartedAt.UTC(),
	}

	if r.FinishedAt != nil {
		utcTime := r.FinishedAt.UTC()
		item.FinishedAt = &utcTime
	}

	return item
}

func newRunItems(runs []model.Run) []runItem {
	items := make([]runItem, len(runs))
	for i, r := range runs {
		items[i] = newRunItem(r)
	}
	return items
}

func newRunOutput(r model.Run) runOutput {
	output := runOutput{
		runItem:  newRunItem(r),
		Notified: r.Notified,
		Tasks:    make([]taskOutput, len(r.Tasks)),
	}

	for i, t := range r.Tasks {
		to := taskOutput{
			Sequence:   t.Sequence,
			Name:       t.Name,
			Status:     string(t.Status),
			StartedAt:  t.StartedAt.UTC(),
			FinishedAt: t.FinishedAt.UTC(),
		}
		for _, f := range t.Failures {
			to.Failures = append(to.Failures, failureOutput{
				Kind:     string(f.Kind),
				Task:     f.Task,
				Message:  f.Message,
				Command:  f.Command,
				ExitCode: f.ExitCode,
			})
		}
		output.Tasks[i] = to
	}

	return output
}

func newCatalogItems(tasks []task.Task) []catalogItem {
	items := make([]catalogItem, len(tasks))
	for i, t := range tasks {
		items[i] = catalogItem{Order: i + 1, Name: t.Name, Description: t.Description}
	}
	return items
}
