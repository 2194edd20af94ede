// Package config provides configuration helpers shared by the CLI
// commands.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDatabasePath is where the SQLite database lives when the config
// does not name one.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "taxmata.db"
	}
	return filepath.Join(home, ".local", "share", "taxmata", "taxmata.db")
}
