package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/tscompiler/internal/config"
)

func newConfigCmd() *cobra.Command {
	parent := &cobra.Command{
		Use:   "config",
		Short: "Manage the .tscompiler.yaml project configuration",
	}
	parent.AddCommand(newConfigInitCmd())
	parent.AddCommand(newConfigVetCmd())
	return parent
}

func newConfigInitCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .tscompiler.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				paths, err := config.DefaultPaths()
				if err != nil {
					return err
				}
				path = paths.ConfigFile
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "destination path (default: the platform config directory)")
	return cmd
}

func newConfigVetCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "vet",
		Short: "Validate a .tscompiler.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = flagConfig
			}
			if path == "" {
				paths, err := config.DefaultPaths()
				if err != nil {
					return err
				}
				path = paths.ConfigFile
			}
			if err := config.ValidateFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "config path to validate (default: resolved config path)")
	return cmd
}
