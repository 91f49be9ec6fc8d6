// Package config provides project configuration loading and management
// for the tscompiler CLI: semantics catalog locations, cache directory,
// default diagnostic surfaces, and refactor policy defaults.
package config

import (
	"os"
	"path/filepath"
)

// Paths contains standard filesystem paths for the CLI.
type Paths struct {
	// ConfigFile is the path to the project config file (~/.tscompiler/config.yaml).
	ConfigFile string

	// CacheDir is the path to the compiled-artifact cache directory (~/.tscompiler/cache).
	CacheDir string

	// HomeDir is the path to the tscompiler home directory (~/.tscompiler).
	HomeDir string
}

// DefaultPaths returns the default paths, expanding ~ to the user's home directory.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	tscHome := filepath.Join(homeDir, ".tscompiler")
	return &Paths{
		ConfigFile: filepath.Join(tscHome, "config.yaml"),
		CacheDir:   filepath.Join(tscHome, "cache"),
		HomeDir:    tscHome,
	}, nil
}

// PathsFromEnv returns paths considering environment overrides.
func PathsFromEnv() (*Paths, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}

	if configPath := os.Getenv("TSC_CONFIG"); configPath != "" {
		paths.ConfigFile = configPath
	}
	if cacheDir := os.Getenv("TSC_CACHE_DIR"); cacheDir != "" {
		paths.CacheDir = cacheDir
	}

	return paths, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// EnsureDir ensures a directory exists with the given permissions.
func EnsureDir(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
