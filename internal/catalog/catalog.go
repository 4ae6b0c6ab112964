package catalog

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/slok/bkup/internal/config"
	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/shell"
	"github.com/slok/bkup/internal/task"
)

// Task names in catalog order.
const (
	TaskCommitNotes    = "commit-notes"
	TaskMirrorRemotes  = "mirror-remotes"
	TaskUpgradeChoco   = "upgrade-choco"
	TaskUpgradeWSL     = "upgrade-wsl"
	TaskSnapshotDirs   = "snapshot-dirs"
	TaskBackupWSL      = "backup-wsl"
	TaskCheckIntegrity = "check-integrity"
)

// CatalogConfig is the configuration for the task catalog.
type CatalogConfig struct {
	Config config.Config
	Runner shell.Runner
	// Environ returns the host environment, used to extend the WSL share list.
	Environ func() []string
	// Now is used for the notes commit message (default: time.Now).
	Now func() time.Time
	// Shuffle randomizes the backup directories order (default: math/rand).
	Shuffle func(dirs []string)
	Logger  log.Logger
}

func (c *CatalogConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Config.HomeDir == "" {
		return fmt.Errorf("home dir is required")
	}
	if c.Environ == nil {
		return fmt.Errorf("environ is required")
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Shuffle == nil {
		c.Shuffle = func(dirs []string) {
			rand.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
		}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "catalog.Catalog"})
	return nil
}

// Catalog is the fixed set of backup, sync and maintenance tasks.
type Catalog struct {
	cfg     config.Config
	runner  shell.Runner
	environ func() []string
	now     func() time.Time
	shuffle func(dirs []string)
	logger  log.Logger
}

// New creates a new task catalog.
func New(cfg CatalogConfig) (*Catalog, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Catalog{
		cfg:     cfg.Config,
		runner:  cfg.Runner,
		environ: cfg.Environ,
		now:     cfg.Now,
		shuffle: cfg.Shuffle,
		logger:  cfg.Logger,
	}, nil
}

// Tasks returns the catalog tasks in their fixed run order.
func (c *Catalog) Tasks() []task.Task {
	return []task.Task{
		{Name: TaskCommitNotes, Description: "Commit the notes repository.", Run: c.CommitNotes},
		{Name: TaskMirrorRemotes, Description: "Mirror remote directories locally.", Run: c.MirrorRemotes},
		{Name: TaskUpgradeChoco, Description: "Upgrade the host packages.", Run: c.UpgradeChoco},
		{Name: TaskUpgradeWSL, Description: "Upgrade the WSL packages.", Run: c.UpgradeWSL},
		{Name: TaskSnapshotDirs, Description: "Snapshot the home directories with restic.", Run: c.SnapshotDirs},
		{Name: TaskBackupWSL, Description: "Back up the WSL home with restic.", Run: c.BackupWSL},
		{Name: TaskCheckIntegrity, Description: "Check the restic repository integrity.", Run: c.CheckIntegrity},
	}
}

// excludeFlags repeats the exclude flag for every pattern.
func excludeFlags(patterns []string) []string {
	flags := make([]string, 0, len(patterns)*2)
	for _, p := range patterns {
		flags = append(flags, "--exclude", p)
	}
	return flags
}
