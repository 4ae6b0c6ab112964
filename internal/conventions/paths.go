package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default bkup data directory name (relative to home).
	DefaultDataDir = ".bkup"
	// DBFile is the run journal SQLite database filename.
	DBFile = "bkup.db"

	// EnvPrefix prefixes the bkup environment variables.
	EnvPrefix = "BKUP"
)

// DataDir returns the bkup data directory of a home directory.
func DataDir(homeDir string) string {
	return filepath.Join(homeDir, DefaultDataDir)
}

// DBPath returns the default run journal path of a home directory.
func DBPath(homeDir string) string {
	return filepath.Join(DataDir(homeDir), DBFile)
}
