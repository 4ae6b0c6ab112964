package bkup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/bkup/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "bkup"
	}

	// go test changes the CWD to the test package directory.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("BKUP_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("bkup binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "BKUP_INTEGRATION"
		envBinary     = "BKUP_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{Binary: os.Getenv(envBinary)}
	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// Env is an isolated home and journal for a test.
type Env struct {
	config Config
	home   string
	dbPath string
}

// NewEnv creates an isolated bkup environment on a temporary home.
func NewEnv(t *testing.T, config Config) Env {
	t.Helper()

	home := t.TempDir()
	return Env{
		config: config,
		home:   home,
		dbPath: filepath.Join(home, ".bkup", "bkup.db"),
	}
}

// Run runs bkup with the isolated home and journal.
func (e Env) Run(ctx context.Context, args ...string) (stdout, stderr []byte, err error) {
	env := []string{
		"BKUP_HOME=" + e.home,
		"BKUP_DB_PATH=" + e.dbPath,
		"RESTIC_REPOSITORY=local:" + filepath.Join(e.home, "repo"),
		"RESTIC_PASSWORD=integration",
	}
	return testutils.RunBkup(ctx, env, e.config.Binary, args, true)
}
