package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCacheDir_FlagPrecedence(t *testing.T) {
	os.Setenv("TSC_CACHE_DIR", "/env/cache")
	defer os.Unsetenv("TSC_CACHE_DIR")

	result, err := ResolveCacheDir(ResolveCacheDirOptions{
		FlagValue:   "/flag/cache",
		ConfigValue: "/config/cache",
	})
	require.NoError(t, err)

	assert.Equal(t, "/flag/cache", result.CacheDir)
	assert.Equal(t, SourceFlag, result.Source)
	assert.Equal(t, "/env/cache", result.Shadowed[SourceEnv])
	assert.Equal(t, "/config/cache", result.Shadowed[SourceConfig])
}

func TestResolveCacheDir_EnvPrecedence(t *testing.T) {
	os.Setenv("TSC_CACHE_DIR", "/env/cache")
	defer os.Unsetenv("TSC_CACHE_DIR")

	result, err := ResolveCacheDir(ResolveCacheDirOptions{
		ConfigValue: "/config/cache",
	})
	require.NoError(t, err)

	assert.Equal(t, "/env/cache", result.CacheDir)
	assert.Equal(t, SourceEnv, result.Source)
	assert.Equal(t, "/config/cache", result.Shadowed[SourceConfig])
	assert.NotContains(t, result.Shadowed, SourceFlag)
}

func TestResolveCacheDir_ConfigFallback(t *testing.T) {
	os.Unsetenv("TSC_CACHE_DIR")

	result, err := ResolveCacheDir(ResolveCacheDirOptions{
		ConfigValue: "/config/cache",
	})
	require.NoError(t, err)

	assert.Equal(t, "/config/cache", result.CacheDir)
	assert.Equal(t, SourceConfig, result.Source)
}

func TestResolveCacheDir_Default(t *testing.T) {
	os.Unsetenv("TSC_CACHE_DIR")

	result, err := ResolveCacheDir(ResolveCacheDirOptions{})
	require.NoError(t, err)

	assert.Contains(t, result.CacheDir, ".tscompiler")
	assert.Equal(t, SourceDefault, result.Source)
	assert.Empty(t, result.Shadowed)
}

func TestResolveConfigPath_FlagPrecedence(t *testing.T) {
	os.Setenv("TSC_CONFIG", "/env/path/config.yaml")
	defer os.Unsetenv("TSC_CONFIG")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{
		FlagValue: "/flag/path/config.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, "/flag/path/config.yaml", result.ConfigPath)
	assert.Equal(t, SourceFlag, result.Source)
	assert.Equal(t, "/env/path/config.yaml", result.Shadowed[SourceEnv])
	assert.NotEmpty(t, result.Shadowed[SourceDefault])
}

func TestResolveConfigPath_EnvPrecedence(t *testing.T) {
	os.Setenv("TSC_CONFIG", "/env/path/config.yaml")
	defer os.Unsetenv("TSC_CONFIG")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/env/path/config.yaml", result.ConfigPath)
	assert.Equal(t, SourceEnv, result.Source)
	assert.NotEmpty(t, result.Shadowed[SourceDefault])
}

func TestResolveConfigPath_Default(t *testing.T) {
	os.Unsetenv("TSC_CONFIG")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{})
	require.NoError(t, err)

	assert.Contains(t, result.ConfigPath, ".tscompiler")
	assert.Contains(t, result.ConfigPath, "config.yaml")
	assert.Equal(t, SourceDefault, result.Source)
	assert.Empty(t, result.Shadowed)
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "flag", string(SourceFlag))
	assert.Equal(t, "env", string(SourceEnv))
	assert.Equal(t, "config", string(SourceConfig))
	assert.Equal(t, "default", string(SourceDefault))
}

func TestLogResolvedValues(t *testing.T) {
	assert.NotPanics(t, func() {
		LogResolvedValues([]ResolvedValue{{
			Key:      "cacheDir",
			Value:    "/resolved/cache",
			Source:   SourceEnv,
			Shadowed: map[ConfigSource]string{SourceConfig: "/config/cache"},
		}})
	})
}
