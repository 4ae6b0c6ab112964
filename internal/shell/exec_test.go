package shell_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/shell"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunnerRun(t *testing.T) {
	requireSh(t)

	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "marker"), []byte("x"), 0o644))

	tests := map[string]struct {
		environ   func() []string
		cmd       shell.Command
		expOut    string
		expErr    bool
		expCmdErr *shell.CommandError
	}{
		"A successful command should return its trimmed stdout.": {
			cmd:    shell.Command{Name: "sh", Args: []string{"-c", "echo '  hello  '"}},
			expOut: "hello",
		},
		"Stdin should be fed to the command.": {
			cmd:    shell.Command{Name: "sh", Args: []string{"-c", "cat"}, Stdin: "from stdin\n"},
			expOut: "from stdin",
		},
		"Env overrides should be merged on the inherited environment.": {
			environ: func() []string { return []string{"FOO=old", "KEEP=1"} },
			cmd: shell.Command{
				Name: "sh",
				Args: []string{"-c", "echo $FOO-$KEEP"},
				Env:  map[string]string{"FOO": "new"},
			},
			expOut: "new-1",
		},
		"The command should run on the configured directory.": {
			cmd:    shell.Command{Name: "sh", Args: []string{"-c", "ls"}, Dir: tmpDir},
			expOut: "marker",
		},
		"A non-zero exit should return a command error with the streams.": {
			cmd:    shell.Command{Name: "sh", Args: []string{"-c", "echo out; echo err >&2; exit 3"}},
			expErr: true,
			expCmdErr: &shell.CommandError{
				Command:  []string{"sh", "-c", "echo out; echo err >&2; exit 3"},
				ExitCode: 3,
				Stdout:   "out",
				Stderr:   "err",
			},
		},
		"A non-zero exit without check should not fail.": {
			cmd:    shell.Command{Name: "sh", Args: []string{"-c", "echo nothing to commit; exit 1"}, NoCheck: true},
			expOut: "nothing to commit",
		},
		"A missing program should fail with a generic error.": {
			cmd:    shell.Command{Name: "bkup-this-binary-does-not-exist"},
			expErr: true,
		},
		"A missing program should fail even without check.": {
			cmd:    shell.Command{Name: "bkup-this-binary-does-not-exist", NoCheck: true},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			r, err := shell.NewExecRunner(shell.ExecRunnerConfig{
				Environ: test.environ,
				Logger:  log.Noop,
			})
			require.NoError(err)

			out, err := r.Run(context.Background(), test.cmd)

			if test.expErr {
				require.Error(err)
				var cmdErr *shell.CommandError
				if test.expCmdErr != nil {
					require.True(errors.As(err, &cmdErr))
					assert.Equal(test.expCmdErr, cmdErr)
				} else {
					assert.False(errors.As(err, &cmdErr))
				}
				return
			}

			require.NoError(err)
			assert.Equal(test.expOut, out)
		})
	}
}

func TestExecRunnerRunCancelledContext(t *testing.T) {
	requireSh(t)

	r, err := shell.NewExecRunner(shell.ExecRunnerConfig{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Run(ctx, shell.Command{Name: "sh", Args: []string{"-c", "exit 0"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommandErrorMessage(t *testing.T) {
	err := &shell.CommandError{
		Command:  []string{"restic", "check"},
		ExitCode: 1,
		Stdout:   "checking",
		Stderr:   "repository locked",
	}

	exp := "[bkup] Failed to run command: [\"restic\" \"check\"]\n" +
		"[bkup] Return code: 1\n\n" +
		"[bkup] Stdout:\nchecking\n" +
		"[bkup] Stderr:\nrepository locked"
	assert.Equal(t, exp, err.Error())
}
