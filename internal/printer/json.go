package printer

import (
	"encoding/json"
	"io"

	"github.com/slok/bkup/internal/config"
	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/task"
)

// JSONPrinter prints backup information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// PrintRunList prints runs in JSON format with a subset of fields.
func (j *JSONPrinter) PrintRunList(runs []model.Run) error {
	return j.encode(newRunItems(runs))
}

// PrintRun prints a run with its task results in JSON format.
func (j *JSONPrinter) PrintRun(run model.Run) error {
	return j.encode(newRunOutput(run))
}

// PrintTasks prints the catalog tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []task.Task) error {
	return j.encode(newCatalogItems(tasks))
}

// PrintConfig prints the configuration in JSON format.
func (j *JSONPrinter) PrintConfig(cfg config.Config) error {
	return j.encode(cfg)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
