package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	assert.NoError(t, err, "should get home directory")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "no tilde", input: "/absolute/path", expected: "/absolute/path"},
		{name: "relative path without tilde", input: "relative/path", expected: "relative/path"},
		{name: "tilde only", input: "~", expected: homeDir},
		{name: "tilde with slash", input: "~/.kube/config", expected: filepath.Join(homeDir, ".kube", "config")},
		{name: "tilde with path", input: "~/Documents/file.txt", expected: filepath.Join(homeDir, "Documents", "file.txt")},
		{name: "tilde username pattern (not expanded)", input: "~username/file", expected: "~username/file"},
		{name: "tilde in middle (not expanded)", input: "/path/~/file", expected: "/path/~/file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExpandPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDefaultPaths(t *testing.T) {
	paths, err := DefaultPaths()
	require.NoError(t, err)

	assert.Contains(t, paths.ConfigFile, ".tscompiler")
	assert.Contains(t, paths.ConfigFile, "config.yaml")
	assert.Contains(t, paths.CacheDir, "cache")
	assert.Contains(t, paths.HomeDir, ".tscompiler")
}

func TestPathsFromEnv(t *testing.T) {
	os.Setenv("TSC_CONFIG", "/env/config.yaml")
	os.Setenv("TSC_CACHE_DIR", "/env/cache")
	defer func() {
		os.Unsetenv("TSC_CONFIG")
		os.Unsetenv("TSC_CACHE_DIR")
	}()

	paths, err := PathsFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/env/config.yaml", paths.ConfigFile)
	assert.Equal(t, "/env/cache", paths.CacheDir)
}

func TestEnsureDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tscompiler-ensuredir-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	target := filepath.Join(tmpDir, "nested", "dir")
	require.NoError(t, EnsureDir(target, 0o755))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
