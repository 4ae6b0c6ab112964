package config

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/slok/bkup/internal/model"
)

const redacted = "<redacted>"

// Config is the backup configuration. It is built once at startup and passed
// by value to everything that needs it.
type Config struct {
	// HomeDir is the host user home directory.
	HomeDir string `json:"home_dir" yaml:"homeDir"`
	// BackupDirs are the home subdirectories snapshotted on every run.
	BackupDirs []string `json:"backup_dirs" yaml:"backupDirs"`
	// ExcludePatterns are applied to every snapshot and mirror invocation.
	ExcludePatterns []string `json:"exclude_patterns" yaml:"excludePatterns"`
	// NotesDir is the git repository with the notes to commit.
	NotesDir string `json:"notes_dir" yaml:"notesDir"`

	Git      Git      `json:"git" yaml:"git"`
	Restic   Restic   `json:"restic" yaml:"restic"`
	Mirror   Mirror   `json:"mirror" yaml:"mirror"`
	Packages Packages `json:"packages" yaml:"packages"`
	WSL      WSL      `json:"wsl" yaml:"wsl"`
	Email    Email    `json:"email" yaml:"email"`
}

// Git is the version control configuration.
type Git struct {
	Binary string `json:"binary" yaml:"binary"`
}

// Restic is the snapshot backup tool configuration.
type Restic struct {
	Binary          string `json:"binary" yaml:"binary"`
	Repository      string `json:"repository" yaml:"repository"`
	AccessKeyID     string `json:"access_key_id" yaml:"accessKeyID"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secretAccessKey"`
	Password        string `json:"password" yaml:"password"`
	Tag             string `json:"tag" yaml:"tag"`
}

// Mirror is the remote directory mirroring configuration.
type Mirror struct {
	Binary        string   `json:"binary" yaml:"binary"`
	DestDir       string   `json:"dest_dir" yaml:"destDir"`
	Remotes       []Remote `json:"remotes" yaml:"remotes"`
	ExtraExcludes []string `json:"extra_excludes" yaml:"extraExcludes"`
}

// Remote is a named remote source mirrored into a local destination.
type Remote struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source" yaml:"source"`
	Dest   string `json:"dest" yaml:"dest"`
}

// Packages is the host package manager configuration.
type Packages struct {
	ChocoBinary string `json:"choco_binary" yaml:"chocoBinary"`
}

// WSL is the Linux subsystem configuration.
type WSL struct {
	Binary       string `json:"binary" yaml:"binary"`
	ResticBinary string `json:"restic_binary" yaml:"resticBinary"`
	HomeDir      string `json:"home_dir" yaml:"homeDir"`
	Tag          string `json:"tag" yaml:"tag"`
	// ShareVar is the variable holding the host to WSL variable allowlist.
	ShareVar string `json:"share_var" yaml:"shareVar"`
}

// Email is the notification account. Mails are sent from the account to itself.
type Email struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Address  string `json:"address" yaml:"address"`
	Password string `json:"password" yaml:"password"`
}

// Secrets are the values that are never compiled in.
type Secrets struct {
	ResticRepository      string
	ResticAccessKeyID     string
	ResticSecretAccessKey string
	ResticPassword        string
	EmailAddress          string
	EmailPassword         string
}

// Default returns the compiled-in configuration for a home directory.
func Default(homeDir string, secrets Secrets) Config {
	wslHome := path.Join("/home", filepath.Base(filepath.Clean(homeDir)))
	mirrorDest := filepath.Join(homeDir, "backup")

	return Config{
		HomeDir: homeDir,
		BackupDirs: []string{
			"Documents",
			"Pictures",
			"Music",
			"Videos",
			"build",
			"AppData/Roaming",
			"VirtualBox VMs",
		},
		ExcludePatterns: []string{
			"node_modules/**",
			".cache/**",
			".vscode/**",
			".npm/**",
			".vscode-server/**",
		},
		NotesDir: filepath.Join(homeDir, "Documents", "notes"),
		Git:      Git{Binary: "git"},
		Restic: Restic{
			Binary:          "restic",
			Repository:      secrets.ResticRepository,
			AccessKeyID:     secrets.ResticAccessKeyID,
			SecretAccessKey: secrets.ResticSecretAccessKey,
			Password:        secrets.ResticPassword,
			Tag:             "Windows",
		},
		Mirror: Mirror{
			Binary:  "rclone",
			DestDir: mirrorDest,
			Remotes: []Remote{
				{Name: "ghidra", Source: "ghidra:/home/ghidra", Dest: filepath.Join(mirrorDest, "aws", "ghidra")},
				{Name: "twitchbot", Source: "twitchbot:/home/twitchbot", Dest: filepath.Join(mirrorDest, "aws", "twitchbot")},
			},
			ExtraExcludes: []string{".dotfiles/**"},
		},
		Packages: Packages{ChocoBinary: "choco"},
		WSL: WSL{
			Binary:       "wsl.exe",
			ResticBinary: path.Join(wslHome, ".local", "bin", "restic"),
			HomeDir:      wslHome,
			Tag:          "WSL",
			ShareVar:     "WSLENV",
		},
		Email: Email{
			Host:     "smtp.gmail.com",
			Port:     465,
			Address:  secrets.EmailAddress,
			Password: secrets.EmailPassword,
		},
	}
}

// Validate checks the configuration is usable for a backup run.
func (c Config) Validate() error {
	if err := requireValues("home dir", c.HomeDir); err != nil {
		return err
	}
	if err := c.ValidateRestic(); err != nil {
		return err
	}
	if err := c.ValidateNotifier(); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, d := range c.BackupDirs {
		if seen[d] {
			return fmt.Errorf("duplicated backup dir %q: %w", d, model.ErrNotValid)
		}
		seen[d] = true
	}

	return nil
}

// ValidateNotifier checks the email account used to report runs.
func (c Config) ValidateNotifier() error {
	err := requireValues(
		"email address", c.Email.Address,
		"email password", c.Email.Password,
		"email host", c.Email.Host,
	)
	if err != nil {
		return err
	}

	if c.Email.Port <= 0 || c.Email.Port > 65535 {
		return fmt.Errorf("invalid email port %d: %w", c.Email.Port, model.ErrNotValid)
	}

	return nil
}

// ValidateRestic checks the restic repository and its password are set.
func (c Config) ValidateRestic() error {
	return requireValues(
		"restic repository", c.Restic.Repository,
		"restic password", c.Restic.Password,
	)
}

// requireValues receives name and value pairs.
func requireValues(kvs ...string) error {
	var missing []string
	for i := 0; i+1 < len(kvs); i += 2 {
		if strings.TrimSpace(kvs[i+1]) == "" {
			missing = append(missing, kvs[i])
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing %s: %w", strings.Join(missing, ", "), model.ErrNotValid)
	}

	return nil
}

// ResticEnv returns the variables restic reads its repository and credentials from.
func (c Config) ResticEnv() map[string]string {
	return map[string]string{
		"RESTIC_REPOSITORY":     c.Restic.Repository,
		"AWS_ACCESS_KEY_ID":     c.Restic.AccessKeyID,
		"AWS_SECRET_ACCESS_KEY": c.Restic.SecretAccessKey,
		"RESTIC_PASSWORD":       c.Restic.Password,
	}
}

// Redacted returns a copy of the configuration safe to print.
func (c Config) Redacted() Config {
	hide := func(s string) string {
		if s == "" {
			return ""
		}
		return redacted
	}

	r := c
	r.BackupDirs = append([]string(nil), c.BackupDirs...)
	r.ExcludePatterns = append([]string(nil), c.ExcludePatterns...)
	r.Mirror.Remotes = append([]Remote(nil), c.Mirror.Remotes...)
	r.Mirror.ExtraExcludes = append([]string(nil), c.Mirror.ExtraExcludes...)
	r.Restic.AccessKeyID = hide(c.Restic.AccessKeyID)
	r.Restic.SecretAccessKey = hide(c.Restic.SecretAccessKey)
	r.Restic.Password = hide(c.Restic.Password)
	r.Email.Password = hide(c.Email.Password)

	return r
}
