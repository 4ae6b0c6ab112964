package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/bkup/internal/config"
	"github.com/slok/bkup/internal/conventions"
	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/printer"
	"github.com/slok/bkup/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string
	HomeDir    string
	Secrets    config.Secrets

	// Global instances.
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  log.Logger
	Environ func() []string
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{Environ: os.Environ}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	home := homedir.HomeDir()
	app.Flag("home", "Home directory the backup layout is relative to.").Default(home).StringVar(&c.HomeDir)
	app.Flag("db-path", "Path to the run journal SQLite database file (default: <home>/"+conventions.DefaultDataDir+"/"+conventions.DBFile+").").StringVar(&c.DBPath)

	// Secrets are only read from the environment or flags, never compiled in.
	app.Flag("restic-repository", "Restic repository.").Envar("RESTIC_REPOSITORY").StringVar(&c.Secrets.ResticRepository)
	app.Flag("aws-access-key-id", "Restic repository AWS access key ID.").Envar("AWS_ACCESS_KEY_ID").StringVar(&c.Secrets.ResticAccessKeyID)
	app.Flag("aws-secret-access-key", "Restic repository AWS secret access key.").Envar("AWS_SECRET_ACCESS_KEY").StringVar(&c.Secrets.ResticSecretAccessKey)
	app.Flag("restic-password", "Restic repository password.").Envar("RESTIC_PASSWORD").StringVar(&c.Secrets.ResticPassword)
	app.Flag("email-address", "Account the notification is sent from and to.").Envar(conventions.EnvPrefix + "_EMAIL_ADDRESS").StringVar(&c.Secrets.EmailAddress)
	app.Flag("email-password", "Notification account password.").Envar(conventions.EnvPrefix + "_EMAIL_PASSWORD").StringVar(&c.Secrets.EmailPassword)

	return c
}

// Config returns the backup configuration from the global flags.
func (c RootCommand) Config() config.Config {
	return config.Default(c.HomeDir, c.Secrets)
}

// JournalPath returns the run journal database path, derived from the home
// directory unless it was set explicitly.
func (c RootCommand) JournalPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return conventions.DBPath(c.HomeDir)
}

// OpenJournal opens the run journal database.
func (c RootCommand) OpenJournal(ctx context.Context) (*sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.JournalPath(),
		Logger: c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open run journal: %w", err)
	}

	return repo, nil
}

func newPrinter(format string, w io.Writer) printer.Printer {
	switch format {
	case FormatJSON:
		return printer.NewJSONPrinter(w)
	case FormatYAML:
		return printer.NewYAMLPrinter(w)
	default:
		return printer.NewTablePrinter(w)
	}
}
