package bkup_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/bkup/test/integration/bkup"
)

func TestIntegrationDryRunHistory(t *testing.T) {
	config := bkup.NewConfig(t)
	env := bkup.NewEnv(t, config)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	tests := []struct {
		name  string
		runs  int
		extra []string
	}{
		{name: "first run", runs: 1, extra: []string{"--seed", "7"}},
		{name: "second run", runs: 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			stdout, stderr, err := env.Run(ctx, append([]string{"run", "--dry-run"}, test.extra...)...)
			require.NoError(err, "stderr: %s", stderr)
			assert.Contains(string(stdout), "Backup succeeded")

			stdout, stderr, err = env.Run(ctx, "history", "list", "--format", "json")
			require.NoError(err, "stderr: %s", stderr)

			var runs []map[string]any
			require.NoError(json.Unmarshal(stdout, &runs))
			assert.Len(runs, test.runs)
		})
	}
}

func TestIntegrationTasks(t *testing.T) {
	config := bkup.NewConfig(t)
	env := bkup.NewEnv(t, config)

	stdout, stderr, err := env.Run(context.Background(), "tasks")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Len(t, strings.Split(strings.TrimSpace(string(stdout)), "\n"), 8)
}
