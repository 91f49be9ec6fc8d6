package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	cliVersion = "dev"
	gitCommit  = "unknown"
	buildDate  = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show CLI version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "tscompiler %s (%s) built %s with %s\n",
				cliVersion, gitCommit, buildDate, runtime.Version())
			return nil
		},
	}
}
