package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appName        = "goopy"
	configFileName = "config.toml"
)

// DefaultConfigDir returns <user config dir>/goopy, or "" when the platform
// has no config directory.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName)
}

// DefaultConfigPath returns the config file used when none is given.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return configFileName
	}
	return filepath.Join(dir, configFileName)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
