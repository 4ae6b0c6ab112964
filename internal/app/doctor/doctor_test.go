package doctor_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/bkup/internal/app/doctor"
	"github.com/slok/bkup/internal/config"
	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/model"
)

type journalFunc func(ctx context.Context) (uint, bool, error)

func (f journalFunc) SchemaVersion(ctx context.Context) (uint, bool, error) { return f(ctx) }

func lookPathIn(found ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		for _, f := range found {
			if f == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", fmt.Errorf("%s: not found", file)
	}
}

var allSecrets = config.Secrets{
	ResticRepository:      "s3:bucket",
	ResticAccessKeyID:     "id",
	ResticSecretAccessKey: "secret",
	ResticPassword:        "pass",
	EmailAddress:          "me@example.com",
	EmailPassword:         "mailpass",
}

func newHome(t *testing.T, withNotes bool) string {
	t.Helper()

	home := t.TempDir()
	cfg := config.Default(home, config.Secrets{})
	for _, d := range cfg.BackupDirs {
		require.NoError(t, os.MkdirAll(filepath.Join(home, d), 0755))
	}
	if withNotes {
		require.NoError(t, os.MkdirAll(filepath.Join(cfg.NotesDir, ".git"), 0755))
	}

	return home
}

func statuses(results []model.CheckResult) map[string]model.CheckStatus {
	m := map[string]model.CheckStatus{}
	for _, r := range results {
		m[r.ID] = r.Status
	}
	return m
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config doctor.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: doctor.ServiceConfig{Config: config.Default("/home/me", allSecrets), Logger: log.Noop},
		},
		"missing home dir should fail": {
			config: doctor.ServiceConfig{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := doctor.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		secrets     config.Secrets
		binaries    []string
		withNotes   bool
		removeDir   string
		journal     doctor.SchemaVersioner
		expStatuses map[string]model.CheckStatus
	}{
		"everything in place should pass every check": {
			secrets:   allSecrets,
			binaries:  []string{"git", "rclone", "restic", "choco", "wsl.exe"},
			withNotes: true,
			journal:   journalFunc(func(context.Context) (uint, bool, error) { return 1, false, nil }),
			expStatuses: map[string]model.CheckStatus{
				"git_binary":       model.CheckStatusOK,
				"rclone_binary":    model.CheckStatusOK,
				"restic_binary":    model.CheckStatusOK,
				"choco_binary":     model.CheckStatusOK,
				"wsl_binary":       model.CheckStatusOK,
				"secrets":          model.CheckStatusOK,
				"notes_repository": model.CheckStatusOK,
				"backup_dirs":      model.CheckStatusOK,
				"journal":          model.CheckStatusOK,
			},
		},
		"missing tools should error and host only tools should warn": {
			secrets:   allSecrets,
			binaries:  []string{"git"},
			withNotes: true,
			expStatuses: map[string]model.CheckStatus{
				"git_binary":       model.CheckStatusOK,
				"rclone_binary":    model.CheckStatusError,
				"restic_binary":    model.CheckStatusError,
				"choco_binary":     model.CheckStatusWarning,
				"wsl_binary":       model.CheckStatusWarning,
				"secrets":          model.CheckStatusOK,
				"notes_repository": model.CheckStatusOK,
				"backup_dirs":      model.CheckStatusOK,
			},
		},
		"missing secrets, notes and backup dirs should be reported": {
			binaries:  []string{"git", "rclone", "restic", "choco", "wsl.exe"},
			removeDir: "Music",
			journal:   journalFunc(func(context.Context) (uint, bool, error) { return 1, true, nil }),
			expStatuses: map[string]model.CheckStatus{
				"git_binary":       model.CheckStatusOK,
				"rclone_binary":    model.CheckStatusOK,
				"restic_binary":    model.CheckStatusOK,
				"choco_binary":     model.CheckStatusOK,
				"wsl_binary":       model.CheckStatusOK,
				"secrets":          model.CheckStatusError,
				"notes_repository": model.CheckStatusWarning,
				"backup_dirs":      model.CheckStatusWarning,
				"journal":          model.CheckStatusError,
			},
		},
		"an unreadable journal should warn": {
			secrets:   allSecrets,
			binaries:  []string{"git", "rclone", "restic", "choco", "wsl.exe"},
			withNotes: true,
			journal:   journalFunc(func(context.Context) (uint, bool, error) { return 0, false, fmt.Errorf("locked") }),
			expStatuses: map[string]model.CheckStatus{
				"git_binary":       model.CheckStatusOK,
				"rclone_binary":    model.CheckStatusOK,
				"restic_binary":    model.CheckStatusOK,
				"choco_binary":     model.CheckStatusOK,
				"wsl_binary":       model.CheckStatusOK,
				"secrets":          model.CheckStatusOK,
				"notes_repository": model.CheckStatusOK,
				"backup_dirs":      model.CheckStatusOK,
				"journal":          model.CheckStatusWarning,
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			home := newHome(t, test.withNotes)
			if test.removeDir != "" {
				require.NoError(os.RemoveAll(filepath.Join(home, test.removeDir)))
			}

			svc, err := doctor.NewService(doctor.ServiceConfig{
				Config:   config.Default(home, test.secrets),
				Journal:  test.journal,
				LookPath: lookPathIn(test.binaries...),
			})
			require.NoError(err)

			results := svc.Run(context.Background())

			assert.Equal(test.expStatuses, statuses(results))
		})
	}
}
