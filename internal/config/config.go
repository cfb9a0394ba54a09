// Package config handles configuration file loading and parsing.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName is used for config and data directory names.
const AppName = "toastd"

// ConfigDir returns the toastd configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName), nil
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "toastd.toml"), nil
}

// EnvFilePath returns the path of the optional .env file next to the config.
func EnvFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
