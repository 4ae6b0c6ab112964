package config_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/bkup/internal/config"
	"github.com/slok/bkup/internal/model"
)

func testSecrets() config.Secrets {
	return config.Secrets{
		ResticRepository:      "s3:s3.example.com/bucket",
		ResticAccessKeyID:     "key-id",
		ResticSecretAccessKey: "secret",
		ResticPassword:        "restic-pass",
		EmailAddress:          "me@example.com",
		EmailPassword:         "mail-pass",
	}
}

func TestDefault(t *testing.T) {
	assert := assert.New(t)

	home := filepath.Join("/", "users", "alex")
	cfg := config.Default(home, testSecrets())

	assert.Equal(home, cfg.HomeDir)
	assert.Len(cfg.BackupDirs, 7)
	assert.Contains(cfg.BackupDirs, "VirtualBox VMs")
	assert.Equal(filepath.Join(home, "Documents", "notes"), cfg.NotesDir)
	assert.Equal("/home/alex", cfg.WSL.HomeDir)
	assert.Equal("/home/alex/.local/bin/restic", cfg.WSL.ResticBinary)
	assert.Equal(filepath.Join(home, "backup", "aws", "ghidra"), cfg.Mirror.Remotes[0].Dest)
	assert.Equal("smtp.gmail.com", cfg.Email.Host)
	assert.Equal(465, cfg.Email.Port)
	assert.Equal("restic-pass", cfg.Restic.Password)
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := config.Default("/home/a", testSecrets())
	b := config.Default("/home/a", testSecrets())

	a.BackupDirs[0] = "changed"
	assert.Equal(t, "Documents", b.BackupDirs[0])
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		cfg    func() config.Config
		expErr bool
	}{
		"A complete config should be valid.": {
			cfg:    func() config.Config { return config.Default("/home/alex", testSecrets()) },
			expErr: false,
		},
		"Missing secrets should fail.": {
			cfg:    func() config.Config { return config.Default("/home/alex", config.Secrets{}) },
			expErr: true,
		},
		"An invalid email port should fail.": {
			cfg: func() config.Config {
				c := config.Default("/home/alex", testSecrets())
				c.Email.Port = 0
				return c
			},
			expErr: true,
		},
		"Duplicated backup dirs should fail.": {
			cfg: func() config.Config {
				c := config.Default("/home/alex", testSecrets())
				c.BackupDirs = append(c.BackupDirs, "Documents")
				return c
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.cfg().Validate()
			if test.expErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrNotValid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResticEnv(t *testing.T) {
	cfg := config.Default("/home/alex", testSecrets())

	exp := map[string]string{
		"RESTIC_REPOSITORY":     "s3:s3.example.com/bucket",
		"AWS_ACCESS_KEY_ID":     "key-id",
		"AWS_SECRET_ACCESS_KEY": "secret",
		"RESTIC_PASSWORD":       "restic-pass",
	}
	assert.Equal(t, exp, cfg.ResticEnv())
}

func TestRedacted(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default("/home/alex", testSecrets())
	r := cfg.Redacted()

	assert.Equal("<redacted>", r.Restic.Password)
	assert.Equal("<redacted>", r.Restic.SecretAccessKey)
	assert.Equal("<redacted>", r.Restic.AccessKeyID)
	assert.Equal("<redacted>", r.Email.Password)
	assert.Equal("s3:s3.example.com/bucket", r.Restic.Repository)
	assert.Equal("me@example.com", r.Email.Address)

	// Original is untouched.
	assert.Equal("restic-pass", cfg.Restic.Password)

	empty := config.Default("/home/alex", config.Secrets{}).Redacted()
	assert.Equal("", empty.Restic.Password)
}

func TestPartialValidation(t *testing.T) {
	tests := map[string]struct {
		secrets        config.Secrets
		expNotifierErr bool
		expResticErr   bool
	}{
		"Complete secrets should be valid.": {
			secrets: testSecrets(),
		},
		"Missing restic secrets should only invalidate restic.": {
			secrets:      config.Secrets{EmailAddress: "me@example.com", EmailPassword: "mail-pass"},
			expResticErr: true,
		},
		"Missing email secrets should only invalidate the notifier.": {
			secrets:        config.Secrets{ResticRepository: "s3:bucket", ResticPassword: "pass"},
			expNotifierErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default("/home/alex", test.secrets)

			err := cfg.ValidateNotifier()
			if test.expNotifierErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}

			err = cfg.ValidateRestic()
			if test.expResticErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
