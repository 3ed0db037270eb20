package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// ProjectConfigFile is the project config name inside the workspace.
	ProjectConfigFile = ".modkit.yml"
	// LegacyProjectConfigFile is the JSON config older setups used.
	LegacyProjectConfigFile = ".modkit.json"
)

// UserConfigPath returns the path to the user-level config file,
// $XDG_CONFIG_HOME/modkit/config.yml on every platform xdg supports.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yml")
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "modkit")
}

// StateDir returns the directory for history and logs.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "modkit")
}

// ProjectConfigPath returns <workspaceDir>/.modkit.yml.
func ProjectConfigPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, ProjectConfigFile)
}

// LegacyProjectConfigPath returns <workspaceDir>/.modkit.json.
func LegacyProjectConfigPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, LegacyProjectConfigFile)
}
