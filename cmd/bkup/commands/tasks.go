package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/bkup/internal/catalog"
	"github.com/slok/bkup/internal/shell/fake"
)

type TasksCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewTasksCommand returns the tasks command.
func NewTasksCommand(rootCmd *RootCommand, app *kingpin.Application) *TasksCommand {
	c := &TasksCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("tasks", "List the backup tasks in their run order.")
	c.Cmd.Flag("format", "Output format (table, json, yaml).").Default(FormatTable).EnumVar(&c.format, FormatTable, FormatJSON, FormatYAML)

	return c
}

func (c TasksCommand) Name() string { return c.Cmd.FullCommand() }

func (c TasksCommand) Run(ctx context.Context) error {
	// Tasks are only listed, nothing is executed.
	runner, err := fake.NewRunner(fake.RunnerConfig{Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create runner: %w", err)
	}

	cat, err := catalog.New(catalog.CatalogConfig{
		Config:  c.rootCmd.Config(),
		Runner:  runner,
		Environ: c.rootCmd.Environ,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create task catalog: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTasks(cat.Tasks()); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}

	return nil
}
