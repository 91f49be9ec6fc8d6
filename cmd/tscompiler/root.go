package main

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/tscompiler/internal/config"
	"github.com/opmodel/tscompiler/internal/output"
)

var (
	flagConfig   string
	flagCacheDir string
	flagVerbose  bool

	resolved *config.ResolvedConfig
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tscompiler",
		Short: "Template compiler pipeline and semantic workspace",
		Long: `tscompiler lowers Aurelia-style HTML templates into typed IR, binds
them against a project's discovered custom elements/attributes/value
converters/binding behaviors, type-checks bound expressions, and emits
a TypeScript overlay with source-mapped provenance for editor tooling.`,
		PersistentPreRunE: initGlobals,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to .tscompiler.yaml (env: TSC_CONFIG)")
	root.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "compiled-artifact cache directory (env: TSC_CACHE_DIR)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCompileCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newConfigCmd())

	return root
}

func initGlobals(cmd *cobra.Command, _ []string) error {
	output.SetupLogging(output.LogConfig{Verbose: flagVerbose})

	rc, err := config.LoadConfig(config.LoaderOptions{
		CacheDirFlag: flagCacheDir,
		ConfigFlag:   flagConfig,
	})
	if err != nil {
		return err
	}
	resolved = rc

	output.LogResolvedValues([]config.ResolvedValue{
		{Key: "cacheDir", Value: rc.Config.CacheDir, Source: rc.CacheDirSource},
	})
	return nil
}
