package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	oerrors "github.com/opmodel/tscompiler/internal/errors"
	"github.com/opmodel/tscompiler/internal/output"
)

// LoaderOptions contains options for loading configuration.
type LoaderOptions struct {
	// CacheDirFlag is the --cache-dir flag value.
	CacheDirFlag string
	// ConfigFlag is the --config flag value.
	ConfigFlag string
}

// readProjectFile reads the raw `.tscompiler.yaml`-shaped fields via
// viper, without applying flag/env precedence. Phase 1 of the loading
// process: isolate "what does the file itself say" from "what wins
// after flags and env are layered on", mirroring the two-phase
// bootstrap-then-resolve shape this package has always used for
// precedence-sensitive fields.
func readProjectFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		output.Debug("config file not found, using defaults", "path", configPath)
		return &Config{}, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, &oerrors.CompileError{
			Stage:   "config",
			Code:    "config-parse-error",
			Message: err.Error(),
			Hint:    "run `tscompiler config vet` to check for configuration errors",
			Cause:   oerrors.ErrValidation,
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &oerrors.CompileError{
			Stage:   "config",
			Code:    "config-decode-error",
			Message: err.Error(),
			Hint:    "check `.tscompiler.yaml` matches the expected shape",
			Cause:   oerrors.ErrValidation,
		}
	}
	return cfg, nil
}

// LoadConfig loads the project configuration with flag/env/config-file/
// default precedence applied to every precedence-sensitive field.
//
// Phase 1 (readProjectFile): read the resolved config file's raw values.
// Phase 2: resolve each precedence-sensitive field (currently CacheDir)
// against flags and environment, recording which source won.
func LoadConfig(opts LoaderOptions) (*ResolvedConfig, error) {
	configPathResult, err := ResolveConfigPath(ResolveConfigPathOptions{FlagValue: opts.ConfigFlag})
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	output.Debug("resolved config path", "path", configPathResult.ConfigPath, "source", configPathResult.Source)

	cfg, err := readProjectFile(configPathResult.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)

	cacheDirResult, err := ResolveCacheDir(ResolveCacheDirOptions{
		FlagValue:   opts.CacheDirFlag,
		ConfigValue: cfg.CacheDir,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving cache directory: %w", err)
	}
	cfg.CacheDir = cacheDirResult.CacheDir
	output.Debug("resolved cache directory", "path", cfg.CacheDir, "source", cacheDirResult.Source)

	return &ResolvedConfig{
		Config:           cfg,
		CacheDirSource:   cacheDirResult.Source,
		ConfigPathSource: configPathResult.Source,
	}, nil
}

// applyConfigDefaults fills fields the project file left unset with
// DefaultConfig's values. CacheDir is deliberately excluded: its default
// is applied inside ResolveCacheDir so that an unset file value still
// resolves to SourceDefault rather than being mistaken for SourceConfig.
func applyConfigDefaults(cfg *Config) {
	defaults := DefaultConfig()
	if len(cfg.DefaultSurfaces) == 0 {
		cfg.DefaultSurfaces = defaults.DefaultSurfaces
	}
	if len(cfg.RefactorPolicy.RenameAllowedTargets) == 0 {
		cfg.RefactorPolicy.RenameAllowedTargets = defaults.RefactorPolicy.RenameAllowedTargets
	}
}

// WriteDefaultConfig writes a starter `.tscompiler.yaml` to path, used
// by `tscompiler config init`.
func WriteDefaultConfig(path string) error {
	v := viper.New()
	cfg := DefaultConfig()
	v.Set("semanticsCatalogPaths", cfg.SemanticsCatalogPaths)
	v.Set("cacheDir", cfg.CacheDir)
	v.Set("defaultSurfaces", cfg.DefaultSurfaces)
	v.Set("refactorPolicy.renameAllowedTargets", cfg.RefactorPolicy.RenameAllowedTargets)
	v.Set("refactorPolicy.requiredDecisions", cfg.RefactorPolicy.RequiredDecisions)
	v.Set("refactorPolicy.allowTypeScriptFallback", cfg.RefactorPolicy.AllowTypeScriptFallback)
	return v.WriteConfigAs(path)
}
