package printer

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/slok/bkup/internal/config"
	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/task"
)

// YAMLPrinter prints backup information in YAML format.
type YAMLPrinter struct {
	writer io.Writer
}

// NewYAMLPrinter creates a new YAML printer.
func NewYAMLPrinter(w io.Writer) *YAMLPrinter {
	return &YAMLPrinter{writer: w}
}

// PrintRunList prints runs in YAML format with a subset of fields.
func (y *YAMLPrinter) PrintRunList(runs []model.Run) error {
	return y.encode(newRunItems(runs))
}

// PrintRun prints a run with its task results in YAML format.
func (y *YAMLPrinter) PrintRun(run model.Run) error {
	return y.encode(newRunOutput(run))
}

// PrintTasks prints the catalog tasks in YAML format.
func (y *YAMLPrinter) PrintTasks(tasks []task.Task) error {
	return y.encode(newCatalogItems(tasks))
}

// PrintConfig prints the configuration in YAML format.
func (y *YAMLPrinter) PrintConfig(cfg config.Config) error {
	return y.encode(cfg)
}

// PrintMessage prints a simple message in YAML format.
func (y *YAMLPrinter) PrintMessage(msg string) error {
	return y.encode(messageOutput{Message: msg})
}

func (y *YAMLPrinter) encode(v any) error {
	enc := yaml.NewEncoder(y.writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("could not encode yaml: %w", err)
	}
	return enc.Close()
}
