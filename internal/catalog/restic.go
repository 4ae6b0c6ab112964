package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/shell"
	"github.com/slok/bkup/internal/task"
	"github.com/slok/bkup/internal/utils/env"
)

// SnapshotDirs backs up every home directory with a filesystem snapshot, in
// a random order. Each directory is tried on its own so a failing one doesn't
// stop the rest.
func (c *Catalog) SnapshotDirs(ctx context.Context) error {
	if err := c.cfg.ValidateRestic(); err != nil {
		return fmt.Errorf("could not snapshot home directories: %w", err)
	}

	dirs := append([]string(nil), c.cfg.BackupDirs...)
	c.shuffle(dirs)

	var failures model.Failures
	for _, dir := range dirs {
		path := filepath.Join(c.cfg.HomeDir, filepath.FromSlash(dir))
		name := TaskSnapshotDirs + "/" + dir
		failures = append(failures, task.Try(ctx, name, func(ctx context.Context) error {
			return c.snapshotDir(ctx, path)
		})...)
	}

	if len(failures) > 0 {
		return task.Failures(failures)
	}

	c.logger.Infof("Backed up %d home directories", len(dirs))
	return nil
}

func (c *Catalog) snapshotDir(ctx context.Context, path string) error {
	c.logger.Infof("Snapshotting dir with restic: %s", path)

	args := excludeFlags(c.cfg.ExcludePatterns)
	args = append(args, "backup", path, "--use-fs-snapshot", "--tag", c.cfg.Restic.Tag)

	_, err := c.runner.Run(ctx, shell.Command{
		Name: c.cfg.Restic.Binary,
		Args: args,
		Env:  c.cfg.ResticEnv(),
	})
	if err != nil {
		return err
	}

	c.logger.Infof("Finished snapshotting dir with restic: %s", path)
	return nil
}

// BackupWSL backs up the WSL home with the WSL restic binary. The restic
// variables are forwarded to WSL through its share list variable.
func (c *Catalog) BackupWSL(ctx context.Context) error {
	if err := c.cfg.ValidateRestic(); err != nil {
		return fmt.Errorf("could not back up WSL: %w", err)
	}

	resticEnv := c.cfg.ResticEnv()

	hostEnv := env.FromList(c.environ())
	shareVar := c.cfg.WSL.ShareVar
	cmdEnv := env.MergeMaps(resticEnv, map[string]string{
		shareVar: env.AppendShared(hostEnv[shareVar], env.SortedKeys(resticEnv)...),
	})

	// No shell so the exclude glob patterns reach restic unexpanded.
	args := []string{
		"--shell-type", "none",
		c.cfg.WSL.ResticBinary,
		"backup", c.cfg.WSL.HomeDir,
		"--tag", c.cfg.WSL.Tag,
	}
	args = append(args, excludeFlags(c.cfg.ExcludePatterns)...)

	_, err := c.runner.Run(ctx, shell.Command{
		Name: c.cfg.WSL.Binary,
		Args: args,
		Env:  cmdEnv,
	})
	if err != nil {
		return fmt.Errorf("could not back up WSL: %w", err)
	}

	c.logger.Infof("Backed up WSL")
	return nil
}

// CheckIntegrity runs the restic repository consistency check.
func (c *Catalog) CheckIntegrity(ctx context.Context) error {
	if err := c.cfg.ValidateRestic(); err != nil {
		return fmt.Errorf("could not check restic repository: %w", err)
	}

	_, err := c.runner.Run(ctx, shell.Command{
		Name: c.cfg.Restic.Binary,
		Args: []string{"check"},
		Env:  c.cfg.ResticEnv(),
	})
	if err != nil {
		return fmt.Errorf("could not check restic repository: %w", err)
	}

	c.logger.Infof("Checked restic repository integrity")
	return nil
}
