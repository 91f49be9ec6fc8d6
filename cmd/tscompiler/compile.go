package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/output"
	"github.com/opmodel/tscompiler/internal/pipeline"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
	"github.com/opmodel/tscompiler/internal/workspace"
)

var (
	flagSemantics []string
	flagSurface   string
	flagFormat    string
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <template.html>",
		Short: "Compile a template and report its diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}
	cmd.Flags().StringSliceVar(&flagSemantics, "semantics", nil, "semantics catalog JSON fact file (repeatable)")
	cmd.Flags().StringVar(&flagSurface, "surface", "cli", "diagnostic surface to report (cli, lsp, aot)")
	cmd.Flags().StringVar(&flagFormat, "format", "yaml", "output format (yaml, json)")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	w, file, err := buildWorkspace(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	wsDiag, err := w.Diagnostics(ctx, file)
	if err != nil {
		return err
	}

	routed := wsDiag.BySurface[diag.Surface(flagSurface)]
	format := output.ParseOutputFormat(flagFormat)
	if err := output.WriteDiagnostics(routed, output.DiagnosticsOptions{Format: format, Writer: cmd.OutOrStdout()}); err != nil {
		return err
	}

	if n := countBlocking(routed); n > 0 {
		return fmt.Errorf("compile: %d blocking diagnostic(s) on %s", n, file)
	}
	return nil
}

func countBlocking(routed []diag.Routed) int {
	n := 0
	for _, r := range routed {
		if r.Severity == diag.SeverityError && !r.Suppressed {
			n++
		}
	}
	return n
}

// buildWorkspace opens a single-file Workspace: semantics catalog facts
// converge into a ResourceGraph, the resolved project config seeds
// Options, and the template at path is opened as the only document.
func buildWorkspace(path string) (*workspace.Workspace, span.SourceFileId, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading template %s: %w", path, err)
	}

	catalogPaths := append([]string{}, resolved.Config.SemanticsCatalogPaths...)
	catalogPaths = append(catalogPaths, flagSemantics...)

	var graph *discovery.ResourceGraph
	if len(catalogPaths) > 0 {
		snap, err := loadCatalog(catalogPaths)
		if err != nil {
			return nil, "", err
		}
		graph = snap.Graph
	}

	cache, err := pipeline.NewFileCache(resolved.Config.CacheDir)
	if err != nil {
		return nil, "", fmt.Errorf("opening cache directory: %w", err)
	}

	w, err := workspace.New(workspace.Options{
		Graph:          graph,
		RootVMType:     scope.UnknownType,
		Cache:          cache,
		Surfaces:       surfacesFromConfig(),
		RefactorPolicy: refactorPolicyFromConfig(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("opening workspace: %w", err)
	}

	file := span.NewSourceFileId(path)
	w.Open(file, string(text))
	return w, file, nil
}
