package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/slok/bkup/internal/config"
	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/model"
)

// SchemaVersioner returns the journal schema version.
type SchemaVersioner interface {
	SchemaVersion(ctx context.Context) (version uint, dirty bool, err error)
}

// ServiceConfig is the configuration for the doctor service.
type ServiceConfig struct {
	Config config.Config
	// Journal is optional, when missing the journal check is skipped.
	Journal SchemaVersioner
	// LookPath finds a binary (default: exec.LookPath).
	LookPath func(file string) (string, error)
	// Stat stats a path (default: os.Stat).
	Stat   func(name string) (os.FileInfo, error)
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Config.HomeDir == "" {
		return fmt.Errorf("config home dir is required")
	}

	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}

	if c.Stat == nil {
		c.Stat = os.Stat
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Doctor"})

	return nil
}

// Service runs the preflight checks of a backup run.
type Service struct {
	cfg      config.Config
	journal  SchemaVersioner
	lookPath func(file string) (string, error)
	stat     func(name string) (os.FileInfo, error)
	logger   log.Logger
}

// NewService creates a new doctor service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		cfg:      cfg.Config,
		journal:  cfg.Journal,
		lookPath: cfg.LookPath,
		stat:     cfg.Stat,
		logger:   cfg.Logger,
	}, nil
}

// Run returns the result of every check, it never stops on a failed one.
func (s *Service) Run(ctx context.Context) []model.CheckResult {
	var results []model.CheckResult

	results = append(results,
		s.checkBinary("git_binary", s.cfg.Git.Binary, model.CheckStatusError),
		s.checkBinary("rclone_binary", s.cfg.Mirror.Binary, model.CheckStatusError),
		s.checkBinary("restic_binary", s.cfg.Restic.Binary, model.CheckStatusError),
		// Only present on the Windows host.
		s.checkBinary("choco_binary", s.cfg.Packages.ChocoBinary, model.CheckStatusWarning),
		s.checkBinary("wsl_binary", s.cfg.WSL.Binary, model.CheckStatusWarning),
	)

	results = append(results, s.checkSecrets())
	results = append(results, s.checkNotesDir())
	results = append(results, s.checkBackupDirs())

	if s.journal != nil {
		results = append(results, s.checkJournal(ctx))
	}

	_, warnings, errors := model.CountChecks(results)
	s.logger.Debugf("Preflight checks finished with %d warning(s) and %d error(s)", warnings, errors)

	return results
}

func (s *Service) checkBinary(id, binary string, missingStatus model.CheckStatus) model.CheckResult {
	path, err := s.lookPath(binary)
	if err != nil {
		return model.CheckResult{
			ID:      id,
			Message: fmt.Sprintf("%s not found in PATH", binary),
			Status:  missingStatus,
		}
	}

	return model.CheckResult{
		ID:      id,
		Message: fmt.Sprintf("%s found at %s", binary, path),
		Status:  model.CheckStatusOK,
	}
}

func (s *Service) checkSecrets() model.CheckResult {
	secrets := []struct {
		name  string
		value string
	}{
		{"restic repository", s.cfg.Restic.Repository},
		{"AWS access key id", s.cfg.Restic.AccessKeyID},
		{"AWS secret access key", s.cfg.Restic.SecretAccessKey},
		{"restic password", s.cfg.Restic.Password},
		{"email address", s.cfg.Email.Address},
		{"email password", s.cfg.Email.Password},
	}

	var missing []string
	for _, sc := range secrets {
		if strings.TrimSpace(sc.value) == "" {
			missing = append(missing, sc.name)
		}
	}

	if len(missing) > 0 {
		return model.CheckResult{
			ID:      "secrets",
			Message: fmt.Sprintf("Missing secrets: %s", strings.Join(missing, ", ")),
			Status:  model.CheckStatusError,
		}
	}

	return model.CheckResult{
		ID:      "secrets",
		Message: "All secrets are set",
		Status:  model.CheckStatusOK,
	}
}

func (s *Service) checkNotesDir() model.CheckResult {
	info, err := s.stat(filepath.Join(s.cfg.NotesDir, ".git"))
	if err != nil || !info.IsDir() {
		return model.CheckResult{
			ID:      "notes_repository",
			Message: fmt.Sprintf("%s is not a git repository", s.cfg.NotesDir),
			Status:  model.CheckStatusWarning,
		}
	}

	return model.CheckResult{
		ID:      "notes_repository",
		Message: fmt.Sprintf("Notes repository found at %s", s.cfg.NotesDir),
		Status:  model.CheckStatusOK,
	}
}

func (s *Service) checkBackupDirs() model.CheckResult {
	var missing []string
	for _, dir := range s.cfg.BackupDirs {
		if _, err := s.stat(filepath.Join(s.cfg.HomeDir, dir)); err != nil {
			missing = append(missing, dir)
		}
	}

	if len(missing) > 0 {
		return model.CheckResult{
			ID:      "backup_dirs",
			Message: fmt.Sprintf("Missing backup directories: %s", strings.Join(missing, ", ")),
			Status:  model.CheckStatusWarning,
		}
	}

	return model.CheckResult{
		ID:      "backup_dirs",
		Message: fmt.Sprintf("All %d backup directories exist", len(s.cfg.BackupDirs)),
		Status:  model.CheckStatusOK,
	}
}

func (s *Service) checkJournal(ctx context.Context) model.CheckResult {
	version, dirty, err := s.journal.SchemaVersion(ctx)
	if err != nil {
		return model.CheckResult{
			ID:      "journal",
			Message: fmt.Sprintf("Cannot read journal schema: %v", err),
			Status:  model.CheckStatusWarning,
		}
	}

	if dirty {
		return model.CheckResult{
			ID:      "journal",
			Message: fmt.Sprintf("Journal schema version %d is dirty", version),
			Status:  model.CheckStatusError,
		}
	}

	return model.CheckResult{
		ID:      "journal",
		Message: fmt.Sprintf("Journal schema at version %d", version),
		Status:  model.CheckStatusOK,
	}
}
