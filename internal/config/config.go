package config

// RefactorPolicyConfig is the project-file-configurable subset of
// workspace.RefactorPolicy. It stays string-typed here rather than
// importing internal/workspace's enum types directly, since config is
// loaded before a Workspace exists; the CLI adapter converts it at the
// point a Workspace is constructed.
type RefactorPolicyConfig struct {
	// RenameAllowedTargets names which rename routes are permitted, e.g.
	// ["resource", "bindable"].
	RenameAllowedTargets []string `yaml:"renameAllowedTargets,omitempty"`

	// RequiredDecisions names decision points Rename must see resolved
	// before it will run, e.g. ["file-rename"].
	RequiredDecisions []string `yaml:"requiredDecisions,omitempty"`

	// AllowTypeScriptFallback is copied into the workspace RefactorPolicy,
	// where Rename does not read it; there is no TypeScript-symbol
	// fallback rename.
	AllowTypeScriptFallback bool `yaml:"allowTypeScriptFallback,omitempty"`
}

// Config is the resolved project configuration for the tscompiler CLI,
// loaded from `.tscompiler.yaml`.
type Config struct {
	// SemanticsCatalogPaths are JSON files, each holding a
	// []discovery.ClassFact list, that the CLI loads and hands to Project
	// Discovery (spec.md §3's ClassFact inputs).
	SemanticsCatalogPaths []string `yaml:"semanticsCatalogPaths,omitempty"`

	// CacheDir is the directory where the CLI's pipeline FileCache writes
	// one JSON file per stage cache key.
	CacheDir string `yaml:"cacheDir,omitempty"`

	// DefaultSurfaces are the diagnostic surfaces routed to when a CLI
	// invocation does not name one explicitly (diag.Surface values).
	DefaultSurfaces []string `yaml:"defaultSurfaces,omitempty"`

	// RefactorPolicy seeds the Workspace's RefactorPolicy.
	RefactorPolicy RefactorPolicyConfig `yaml:"refactorPolicy,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `tscompiler config init` to generate an initial config file.
func DefaultConfig() *Config {
	paths, err := DefaultPaths()
	cacheDir := ""
	if err == nil {
		cacheDir = paths.CacheDir
	}
	return &Config{
		CacheDir:        cacheDir,
		DefaultSurfaces: []string{"cli"},
		RefactorPolicy: RefactorPolicyConfig{
			RenameAllowedTargets: []string{"resource", "bindable"},
		},
	}
}

// ResolvedValue tracks a configuration value and its resolution chain,
// used for logging config resolution with --verbose.
type ResolvedValue struct {
	// Key is the configuration key (e.g. "cacheDir").
	Key string

	// Value is the resolved value.
	Value any

	// Source indicates where the value came from.
	Source ConfigSource

	// Shadowed contains lower-precedence sources that were overridden.
	Shadowed map[ConfigSource]string
}

// ResolvedConfig is the fully-loaded project configuration, annotated
// with where each precedence-resolved field came from.
type ResolvedConfig struct {
	// Config contains the resolved configuration fields.
	Config *Config

	// CacheDirSource indicates where CacheDir came from.
	CacheDirSource ConfigSource

	// ConfigPathSource indicates where the config file path came from.
	ConfigPathSource ConfigSource
}
