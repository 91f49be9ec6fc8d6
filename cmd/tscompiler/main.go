// Command tscompiler is the reference CLI adapter for the template
// compiler pipeline and semantic workspace: a thin cobra/viper surface
// over internal/workspace, internal/pipeline, and internal/config.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
