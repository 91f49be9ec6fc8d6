package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.Equal(t, []string{"cli"}, cfg.DefaultSurfaces)
	assert.Equal(t, []string{"resource", "bindable"}, cfg.RefactorPolicy.RenameAllowedTargets)
	assert.Empty(t, cfg.SemanticsCatalogPaths)
}

func TestConfig_Fields(t *testing.T) {
	cfg := &Config{
		SemanticsCatalogPaths: []string{"src/components"},
		CacheDir:              "/custom/cache",
		DefaultSurfaces:       []string{"cli", "lsp"},
		RefactorPolicy: RefactorPolicyConfig{
			RenameAllowedTargets:    []string{"resource"},
			RequiredDecisions:       []string{"file-rename"},
			AllowTypeScriptFallback: true,
		},
	}

	assert.Equal(t, []string{"src/components"}, cfg.SemanticsCatalogPaths)
	assert.Equal(t, "/custom/cache", cfg.CacheDir)
	assert.Equal(t, []string{"cli", "lsp"}, cfg.DefaultSurfaces)
	assert.Equal(t, []string{"resource"}, cfg.RefactorPolicy.RenameAllowedTargets)
	assert.True(t, cfg.RefactorPolicy.AllowTypeScriptFallback)
}

func TestResolvedValue(t *testing.T) {
	rv := ResolvedValue{
		Key:    "cacheDir",
		Value:  "/resolved/cache",
		Source: SourceEnv,
		Shadowed: map[ConfigSource]string{
			SourceConfig:  "/config/cache",
			SourceDefault: "",
		},
	}

	assert.Equal(t, "cacheDir", rv.Key)
	assert.Equal(t, "/resolved/cache", rv.Value)
	assert.Equal(t, SourceEnv, rv.Source)
	assert.Len(t, rv.Shadowed, 2)
	assert.Equal(t, "/config/cache", rv.Shadowed[SourceConfig])
}

func TestResolvedConfig(t *testing.T) {
	cfg := DefaultConfig()
	resolved := &ResolvedConfig{
		Config:         cfg,
		CacheDirSource: SourceEnv,
	}

	assert.NotNil(t, resolved.Config)
	assert.Equal(t, SourceEnv, resolved.CacheDirSource)
}

func TestRefactorPolicyConfig_ZeroValue(t *testing.T) {
	var rp RefactorPolicyConfig

	assert.Empty(t, rp.RenameAllowedTargets)
	assert.Empty(t, rp.RequiredDecisions)
	assert.False(t, rp.AllowTypeScriptFallback)
}
