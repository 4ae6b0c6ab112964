package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/bkup/internal/app/doctor"
	"github.com/slok/bkup/internal/model"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for a backup run.")

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout

	var journal doctor.SchemaVersioner
	repo, err := c.rootCmd.OpenJournal(ctx)
	if err != nil {
		journal = brokenJournal{err: err}
	} else {
		defer repo.Close()
		journal = repo
	}

	svc, err := doctor.NewService(doctor.ServiceConfig{
		Config:  c.rootCmd.Config(),
		Journal: journal,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	results := svc.Run(ctx)
	for _, r := range results {
		fmt.Fprintf(out, "  %s %-20s %s\n", getStatusIcon(r.Status), r.ID, r.Message)
	}

	_, warnings, errors := model.CountChecks(results)
	fmt.Fprintln(out)
	if errors == 0 && warnings == 0 {
		fmt.Fprintln(out, "All checks passed!")
		return nil
	}

	var summary []string
	if errors > 0 {
		summary = append(summary, fmt.Sprintf("%d error(s)", errors))
	}
	if warnings > 0 {
		summary = append(summary, fmt.Sprintf("%d warning(s)", warnings))
	}
	fmt.Fprintln(out, strings.Join(summary, ", "))

	if errors > 0 {
		return fmt.Errorf("preflight checks failed with %d error(s)", errors)
	}

	return nil
}

// brokenJournal reports why the journal could not be opened as a check result.
type brokenJournal struct{ err error }

func (b brokenJournal) SchemaVersion(context.Context) (uint, bool, error) { return 0, false, b.err }

func getStatusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}
