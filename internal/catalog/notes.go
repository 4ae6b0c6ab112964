package catalog

import (
	"context"
	"fmt"

	"github.com/slok/bkup/internal/shell"
)

// ctimeLayout matches the C ctime() format, e.g. "Mon Jan  2 15:04:05 2006".
const ctimeLayout = "Mon Jan _2 15:04:05 2006"

// CommitNotes stages and commits every change of the notes repository.
// Committing with nothing to commit exits non-zero, so the commit exit code is ignored.
func (c *Catalog) CommitNotes(ctx context.Context) error {
	date := c.now().Format(ctimeLayout)

	_, err := c.runner.Run(ctx, shell.Command{
		Name: c.cfg.Git.Binary,
		Args: []string{"add", "."},
		Dir:  c.cfg.NotesDir,
	})
	if err != nil {
		return fmt.Errorf("could not stage notes: %w", err)
	}

	_, err = c.runner.Run(ctx, shell.Command{
		Name:    c.cfg.Git.Binary,
		Args:    []string{"commit", "-m", "Update " + date},
		Dir:     c.cfg.NotesDir,
		NoCheck: true,
	})
	if err != nil {
		return fmt.Errorf("could not commit notes: %w", err)
	}

	c.logger.Infof("Committed notes")
	return nil
}
