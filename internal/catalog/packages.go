package catalog

import (
	"context"
	"fmt"

	"github.com/slok/bkup/internal/shell"
)

// UpgradeChoco upgrades all the host packages.
func (c *Catalog) UpgradeChoco(ctx context.Context) error {
	_, err := c.runner.Run(ctx, shell.Command{
		Name: c.cfg.Packages.ChocoBinary,
		Args: []string{"upgrade", "all"},
	})
	if err != nil {
		return fmt.Errorf("could not upgrade chocolatey packages: %w", err)
	}

	c.logger.Infof("Upgraded Chocolatey packages")
	return nil
}

// UpgradeWSL refreshes the WSL package index and upgrades non-interactively.
func (c *Catalog) UpgradeWSL(ctx context.Context) error {
	steps := [][]string{
		{"sudo", "apt", "update"},
		{"sudo", "apt", "upgrade", "-y"},
	}

	for _, args := range steps {
		_, err := c.runner.Run(ctx, shell.Command{Name: c.cfg.WSL.Binary, Args: args})
		if err != nil {
			return fmt.Errorf("could not upgrade apt packages: %w", err)
		}
	}

	c.logger.Infof("Updated apt packages in WSL")
	return nil
}
