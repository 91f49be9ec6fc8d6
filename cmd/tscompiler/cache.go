package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	parent := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the compiled-artifact cache",
	}
	parent.AddCommand(newCacheStatsCmd())
	parent.AddCommand(newCacheClearCmd())
	return parent
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Report the cache directory and how many entries it holds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := resolved.Config.CacheDir
			entries, err := os.ReadDir(dir)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "cache dir: %s (empty, not yet created)\n", dir)
					return nil
				}
				return fmt.Errorf("reading cache directory: %w", err)
			}
			count := 0
			var size int64
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
					continue
				}
				count++
				if info, err := e.Info(); err == nil {
					size += info.Size()
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cache dir: %s\nentries: %d\nsize: %d bytes\n", dir, count, size)
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry from the cache directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := resolved.Config.CacheDir
			entries, err := os.ReadDir(dir)
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return fmt.Errorf("reading cache directory: %w", err)
			}
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
					continue
				}
				if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
					return fmt.Errorf("removing cache entry %s: %w", e.Name(), err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cache cleared: %s\n", dir)
			return nil
		},
	}
}
