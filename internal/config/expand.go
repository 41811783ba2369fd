package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// DefaultInitPath is where 'procmon config init' writes without --config:
// $XDG_CONFIG_HOME/procmon/config.yaml, falling back to ~/.config.
func DefaultInitPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, GlobalConfigDir, GlobalConfigFile)
	}
	return filepath.Join(ExpandTilde("~/.config"), GlobalConfigDir, GlobalConfigFile)
}
