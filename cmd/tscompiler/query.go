package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/tscompiler/internal/workspace"
)

var flagOffset int

func newQueryCmd() *cobra.Command {
	parent := &cobra.Command{
		Use:   "query",
		Short: "Ask the semantic workspace about a position in a template",
	}
	parent.PersistentFlags().StringSliceVar(&flagSemantics, "semantics", nil, "semantics catalog JSON fact file (repeatable)")
	parent.PersistentFlags().IntVar(&flagOffset, "offset", 0, "byte offset into the template text")

	parent.AddCommand(newHoverCmd())
	parent.AddCommand(newDefinitionCmd())
	parent.AddCommand(newReferencesCmd())
	parent.AddCommand(newCompletionsCmd())
	return parent
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newHoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hover <template.html>",
		Short: "Report the hover result at --offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, file, err := buildWorkspace(args[0])
			if err != nil {
				return err
			}
			pos := workspace.Position{URI: file, Offset: flagOffset}
			result, ok := w.Hover(cmd.Context(), pos)
			if !ok {
				return fmt.Errorf("query hover: no result at offset %d", flagOffset)
			}
			return writeJSON(cmd, result)
		},
	}
}

func newDefinitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "definition <template.html>",
		Short: "Report the definition span(s) at --offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, file, err := buildWorkspace(args[0])
			if err != nil {
				return err
			}
			pos := workspace.Position{URI: file, Offset: flagOffset}
			return writeJSON(cmd, w.Definition(cmd.Context(), pos))
		},
	}
}

func newReferencesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "references <template.html>",
		Short: "Report every reference span for the symbol at --offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, file, err := buildWorkspace(args[0])
			if err != nil {
				return err
			}
			pos := workspace.Position{URI: file, Offset: flagOffset}
			return writeJSON(cmd, w.References(cmd.Context(), pos))
		},
	}
}

func newCompletionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completions <template.html>",
		Short: "Report completion candidates at --offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, file, err := buildWorkspace(args[0])
			if err != nil {
				return err
			}
			pos := workspace.Position{URI: file, Offset: flagOffset}
			return writeJSON(cmd, w.Completions(cmd.Context(), pos))
		},
	}
}
