package util

import (
	"os"
	"path/filepath"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ConfigDir returns the photosync configuration directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "photosync")
	}
	return filepath.Join(HomeDir(), ".config", "photosync")
}

// DataDir returns the photosync data directory
func DataDir() string {
	return filepath.Join(HomeDir(), ".photosync")
}

// BackupsPath returns the default directory for duplicate backups
func BackupsPath() string {
	return filepath.Join(DataDir(), "backups")
}
