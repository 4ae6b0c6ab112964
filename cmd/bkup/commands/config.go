package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type ConfigCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format   string
	validate bool
}

// NewConfigCommand returns the config command.
func NewConfigCommand(rootCmd *RootCommand, app *kingpin.Application) *ConfigCommand {
	c := &ConfigCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("config", "Print the effective configuration with the secrets redacted.")
	c.Cmd.Flag("format", "Output format (yaml, json).").Default(FormatYAML).EnumVar(&c.format, FormatYAML, FormatJSON)
	c.Cmd.Flag("validate", "Fail if the configuration can't be used for a backup run.").BoolVar(&c.validate)

	return c
}

func (c ConfigCommand) Name() string { return c.Cmd.FullCommand() }

func (c ConfigCommand) Run(ctx context.Context) error {
	cfg := c.rootCmd.Config()

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintConfig(cfg.Redacted()); err != nil {
		return fmt.Errorf("could not print config: %w", err)
	}

	if c.validate {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	return nil
}
