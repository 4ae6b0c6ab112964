package commands

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/bkup/internal/app/backup"
	"github.com/slok/bkup/internal/catalog"
	"github.com/slok/bkup/internal/config"
	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/notify"
	"github.com/slok/bkup/internal/notify/smtp"
	"github.com/slok/bkup/internal/shell"
	"github.com/slok/bkup/internal/shell/fake"
	"github.com/slok/bkup/internal/storage"
	"github.com/slok/bkup/internal/storage/memory"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	dryRun    bool
	noNotify  bool
	noHistory bool
	seed      uint64
}

// NewRunCommand returns the run command, the default one.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run every backup task and notify the result.").Default()
	c.Cmd.Flag("dry-run", "Log the commands and the notification instead of running and sending them.").BoolVar(&c.dryRun)
	c.Cmd.Flag("no-notify", "Log the notification instead of sending it.").BoolVar(&c.noNotify)
	c.Cmd.Flag("no-history", "Don't record the run on the journal.").BoolVar(&c.noHistory)
	c.Cmd.Flag("seed", "Seed for the backup directories order (0 means random).").Uint64Var(&c.seed)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	cfg := c.rootCmd.Config()

	// Only the notifier is required up front, restic tasks fail on their own without their secrets.
	if !c.dryRun && !c.noNotify {
		if err := cfg.ValidateNotifier(); err != nil {
			return fmt.Errorf("invalid notifier configuration: %w", err)
		}
	}

	runner, err := c.newRunner(logger)
	if err != nil {
		return err
	}

	notifier, err := c.newNotifier(cfg, logger)
	if err != nil {
		return err
	}

	repo, closeRepo := c.newJournal(ctx, logger)
	defer closeRepo()

	cat, err := catalog.New(catalog.CatalogConfig{
		Config:  cfg,
		Runner:  runner,
		Environ: c.rootCmd.Environ,
		Shuffle: seededShuffle(c.seed),
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create task catalog: %w", err)
	}

	svc, err := backup.NewService(backup.ServiceConfig{
		Tasks:      cat.Tasks(),
		Notifier:   notifier,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, backup.Request{DryRun: c.dryRun})
	if err != nil {
		return fmt.Errorf("backup run failed: %w", err)
	}

	p := newPrinter(FormatTable, c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("%s: %s", res.Run.ID, res.Subject)); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	return nil
}

func (c RunCommand) newRunner(logger log.Logger) (shell.Runner, error) {
	if c.dryRun {
		r, err := fake.NewRunner(fake.RunnerConfig{Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("could not create dry-run runner: %w", err)
		}
		return r, nil
	}

	r, err := shell.NewExecRunner(shell.ExecRunnerConfig{
		Environ: c.rootCmd.Environ,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create command runner: %w", err)
	}
	return r, nil
}

func (c RunCommand) newNotifier(cfg config.Config, logger log.Logger) (notify.Notifier, error) {
	if c.dryRun || c.noNotify {
		n, err := notify.NewLoggerNotifier(notify.LoggerNotifierConfig{Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("could not create logger notifier: %w", err)
		}
		return n, nil
	}

	n, err := smtp.NewNotifier(smtp.NotifierConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Address:  cfg.Email.Address,
		Password: cfg.Email.Password,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create SMTP notifier: %w", err)
	}
	return n, nil
}

// newJournal returns the run journal. A journal that can't be opened only
// disables the run history.
func (c RunCommand) newJournal(ctx context.Context, logger log.Logger) (storage.RunRepository, func()) {
	if !c.noHistory {
		repo, err := c.rootCmd.OpenJournal(ctx)
		if err == nil {
			return repo, func() {
				if err := repo.Close(); err != nil {
					logger.Warningf("Could not close run journal: %s", err)
				}
			}
		}
		logger.Warningf("Run history disabled: %s", err)
	}

	repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: logger})
	if err != nil {
		logger.Warningf("Run history disabled: %s", err)
		return nil, func() {}
	}
	return repo, func() {}
}

// seededShuffle returns a reproducible shuffle for a seed, 0 keeps the catalog random shuffle.
func seededShuffle(seed uint64) func([]string) {
	if seed == 0 {
		return nil
	}

	r := rand.New(rand.NewPCG(seed, seed))
	return func(dirs []string) {
		r.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	}
}
