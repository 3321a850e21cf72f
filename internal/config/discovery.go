package config

import (
	"os"
	"path/filepath"
)

const configFileName = "bbctl.toml"

// ConfigPaths returns ordered list of config file paths to check.
// Paths are ordered from lowest to highest priority, so that when decoded
// sequentially, each subsequent file overrides values from previous files.
//
// Order (lowest to highest priority):
//  1. File in XDG config directory (~/.config/bbctl/bbctl.toml)
//  2. File in the home directory
//  3. File in the current working directory
func ConfigPaths(cwd, homeDir string) []string {
	var paths []string
	seen := make(map[string]bool)

	addPath := func(dir string) {
		if dir == "" {
			return
		}
		path := filepath.Join(dir, configFileName)
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	if xdgConfigDir, err := os.UserConfigDir(); err == nil {
		addPath(filepath.Join(xdgConfigDir, "bbctl"))
	}

	addPath(homeDir)
	addPath(cwd)

	return paths
}
