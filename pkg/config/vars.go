package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gnbintax"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gnbintax by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files, including the
// baseline store used for incremental updates.
// Returns ~/.cache/gnbintax by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gnbintax/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gnbintax/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// StoreFilePath returns the full path to the sqlite baseline store.
// Returns ~/.cache/gnbintax/baseline.sqlite by default.
func StoreFilePath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "baseline.sqlite")
}
