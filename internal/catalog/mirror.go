package catalog

import (
	"context"
	"fmt"

	"github.com/slok/bkup/internal/shell"
)

// MirrorRemotes syncs every configured remote into its local destination.
// The remotes run in order and the first failure stops the task.
func (c *Catalog) MirrorRemotes(ctx context.Context) error {
	for _, remote := range c.cfg.Mirror.Remotes {
		args := []string{"sync", "--links"}
		args = append(args, excludeFlags(c.cfg.ExcludePatterns)...)
		args = append(args, remote.Source, remote.Dest)
		args = append(args, excludeFlags(c.cfg.Mirror.ExtraExcludes)...)

		_, err := c.runner.Run(ctx, shell.Command{Name: c.cfg.Mirror.Binary, Args: args})
		if err != nil {
			return fmt.Errorf("could not mirror %s: %w", remote.Name, err)
		}

		c.logger.Infof("Mirrored %s into %s", remote.Name, remote.Dest)
	}

	return nil
}
