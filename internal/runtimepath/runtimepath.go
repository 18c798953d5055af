package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "stackwm"

// ConfigDir returns the directory holding the stackwm configuration.
// Priority:
// 1) XDG_CONFIG_HOME/stackwm (if set)
// 2) ~/.config/stackwm
func ConfigDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the YAML settings file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ScriptPath returns the user configuration script path.
func ScriptPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "init.js"), nil
}
