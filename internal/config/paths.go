package config

import (
	"os"
	"path/filepath"
)

// GlobalConfigDir returns the user-wide config directory, creating nothing.
func GlobalConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "shellmind")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shellmind")
}

// EnsureGlobalConfigDir creates the global config directory if missing.
func EnsureGlobalConfigDir() error {
	return os.MkdirAll(GlobalConfigDir(), 0o755)
}
