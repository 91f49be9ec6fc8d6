package config

import (
	"os"

	"github.com/opmodel/tscompiler/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from a command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from the project config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolveCacheDirOptions contains options for cache directory resolution.
type ResolveCacheDirOptions struct {
	// FlagValue is the --cache-dir flag value (empty if not set).
	FlagValue string
	// ConfigValue is the cacheDir value from the project config file.
	ConfigValue string
}

// ResolveCacheDirResult contains the resolved cache directory and its source.
type ResolveCacheDirResult struct {
	CacheDir string
	Source   ConfigSource
	Shadowed map[ConfigSource]string
}

// ResolveCacheDir resolves the compiled-artifact cache directory using
// precedence: (1) --cache-dir flag, (2) TSC_CACHE_DIR env, (3)
// config.cacheDir, (4) the default path under the user's home directory.
func ResolveCacheDir(opts ResolveCacheDirOptions) (ResolveCacheDirResult, error) {
	result := ResolveCacheDirResult{Shadowed: make(map[ConfigSource]string)}

	envValue := os.Getenv("TSC_CACHE_DIR")
	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultValue := paths.CacheDir

	switch {
	case opts.FlagValue != "":
		result.CacheDir = opts.FlagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		if opts.ConfigValue != "" {
			result.Shadowed[SourceConfig] = opts.ConfigValue
		}
		result.Shadowed[SourceDefault] = defaultValue
	case envValue != "":
		result.CacheDir = envValue
		result.Source = SourceEnv
		if opts.ConfigValue != "" {
			result.Shadowed[SourceConfig] = opts.ConfigValue
		}
		result.Shadowed[SourceDefault] = defaultValue
	case opts.ConfigValue != "":
		result.CacheDir = opts.ConfigValue
		result.Source = SourceConfig
		result.Shadowed[SourceDefault] = defaultValue
	default:
		result.CacheDir = defaultValue
		result.Source = SourceDefault
	}

	return result, nil
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	ConfigPath string
	Source     ConfigSource
	Shadowed   map[ConfigSource]string
}

// ResolveConfigPath resolves the project config file path using
// precedence: (1) --config flag, (2) TSC_CONFIG env, (3) the default
// ~/.tscompiler/config.yaml.
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolveConfigPathResult, error) {
	result := ResolveConfigPathResult{Shadowed: make(map[ConfigSource]string)}

	envValue := os.Getenv("TSC_CONFIG")

	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultPath := paths.ConfigFile

	switch {
	case opts.FlagValue != "":
		result.ConfigPath = opts.FlagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		result.Shadowed[SourceDefault] = defaultPath
	case envValue != "":
		result.ConfigPath = envValue
		result.Source = SourceEnv
		result.Shadowed[SourceDefault] = defaultPath
	default:
		result.ConfigPath = defaultPath
		result.Source = SourceDefault
	}

	return result, nil
}

// LogResolvedValues logs configuration resolution at Debug level when
// --verbose is specified.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
