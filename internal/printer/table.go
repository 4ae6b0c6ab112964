package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/slok/bkup/internal/config"
	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/task"
)

// TablePrinter prints backup information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintRunList prints runs in a table format.
func (t *TablePrinter) PrintRunList(runs []model.Run) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSTATUS\tDURATION\tSTARTED\tSUBJECT")

	for _, r := range runs {
		status := string(r.Status)
		if r.DryRun {
			status += " (dry-run)"
		}
		duration := "-"
		if r.FinishedAt != nil {
			duration = FormatDuration(r.FinishedAt.Sub(r.StartedAt))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, status, duration, TimeAgo(r.StartedAt), r.Subject)
	}

	return nil
}

// PrintRun prints a detailed run with its task results.
func (t *TablePrinter) PrintRun(run model.Run) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", run.ID)
	fmt.Fprintf(t.writer, "Status:     %s\n", run.Status)
	fmt.Fprintf(t.writer, "Dry run:    %t\n", run.DryRun)
	fmt.Fprintf(t.writer, "Notified:   %t\n", run.Notified)
	if run.Subject != "" {
		fmt.Fprintf(t.writer, "Subject:    %s\n", run.Subject)
	}
	fmt.Fprintf(t.writer, "Started:    %s\n", FormatTimestamp(run.StartedAt))
	if run.FinishedAt != nil {
		fmt.Fprintf(t.writer, "Finished:   %s (%s)\n", FormatTimestamp(*run.FinishedAt), FormatDuration(run.FinishedAt.Sub(run.StartedAt)))
	}

	if len(run.Tasks) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTASK\tSTATUS\tERRORS\tDURATION")
	for _, tr := range run.Tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", tr.Sequence, tr.Name, tr.Status, len(tr.Failures), FormatDuration(tr.FinishedAt.Sub(tr.StartedAt)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	failures := run.Failures()
	if len(failures) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	for _, f := range failures {
		fmt.Fprintf(t.writer, "--- %s (%s)\n", f.Task, f.Kind)
		fmt.Fprintln(t.writer, strings.TrimSpace(f.Message))
	}

	return nil
}

// PrintTasks prints the catalog tasks in their run order.
func (t *TablePrinter) PrintTasks(tasks []task.Task) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "#\tTASK\tDESCRIPTION")
	for i, tk := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, tk.Name, tk.Description)
	}

	return nil
}

// PrintConfig prints the configuration as YAML, it is the most readable form.
func (t *TablePrinter) PrintConfig(cfg config.Config) error {
	return NewYAMLPrinter(t.writer).PrintConfig(cfg)
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
