package config

import (
	"fmt"
	"strings"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/workspace"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

var knownSurfaces = map[string]bool{
	string(diag.SurfaceCLI): true,
	string(diag.SurfaceLSP): true,
	string(diag.SurfaceAOT): true,
}

var knownRenameTargets = map[string]bool{
	string(workspace.TargetResource):   true,
	string(workspace.TargetBindable):   true,
	string(workspace.TargetFileRename): true,
}

var knownDecisionPoints = map[string]bool{
	string(workspace.DecisionFileRename):   true,
	string(workspace.DecisionImportStyle):  true,
}

// Validate checks a Config against the known vocabulary of diagnostic
// surfaces and refactor-policy target/decision names, since these are
// closed sums the workspace package defines — a config naming an
// unknown one is a config typo, not a new capability.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if strings.TrimSpace(cfg.CacheDir) == "" {
		errs = append(errs, ValidationError{Field: "cacheDir", Message: "must not be empty or whitespace only"})
	}

	for _, s := range cfg.DefaultSurfaces {
		if !knownSurfaces[s] {
			errs = append(errs, ValidationError{Field: "defaultSurfaces", Message: fmt.Sprintf("unknown surface %q", s)})
		}
	}

	for _, t := range cfg.RefactorPolicy.RenameAllowedTargets {
		if !knownRenameTargets[t] {
			errs = append(errs, ValidationError{Field: "refactorPolicy.renameAllowedTargets", Message: fmt.Sprintf("unknown target %q", t)})
		}
	}

	for _, d := range cfg.RefactorPolicy.RequiredDecisions {
		if !knownDecisionPoints[d] {
			errs = append(errs, ValidationError{Field: "refactorPolicy.requiredDecisions", Message: fmt.Sprintf("unknown decision point %q", d)})
		}
	}

	for _, p := range cfg.SemanticsCatalogPaths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, ValidationError{Field: "semanticsCatalogPaths", Message: "must not contain an empty path"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateFile loads the project config at path and validates it.
func ValidateFile(path string) error {
	resolved, err := LoadConfig(LoaderOptions{ConfigFlag: path})
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	return Validate(resolved.Config)
}
