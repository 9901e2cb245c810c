// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and any $VAR environment references in
// a file path, so paths from the config file or flags work the way
// shells make users expect.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	switch {
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDatabasePath is where the transaction database lives when the
// config file does not say otherwise.
func DefaultDatabasePath() string {
	return ExpandPath("$HOME/.local/share/spendlens/spendlens.db")
}
