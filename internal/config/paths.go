package config

import (
	"os"
	"path/filepath"
)

// UserDir returns ~/.stepwise.
func UserDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".stepwise"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := UserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DBPath returns the sqlite path, falling back to ~/.stepwise/stepwise.db.
func (c *Config) DBPath() (string, error) {
	if c.Database.Path != "" {
		return expandHome(c.Database.Path)
	}
	dir, err := UserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "stepwise.db"), nil
}

// EnsureDirs creates the user directory and the parent of the database file.
func EnsureDirs(userDir, dbPath string) error {
	if err := os.MkdirAll(userDir, 0755); err != nil {
		return err
	}
	if dbPath != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return err
		}
	}
	return nil
}

func expandHome(p string) (string, error) {
	if len(p) < 2 || p[:2] != "~/" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[2:]), nil
}
