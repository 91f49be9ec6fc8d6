// Package errors provides sentinel errors and a structured compile-error
// type for programmer/engine failures (spec.md §7 "Engine errors").
// Diagnostic codes (spec.md §4.9) are a distinct, richer structure
// (diag.Diagnostic) — this package never carries diagnostic codes.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opmodel/tscompiler/internal/span"
)

// Sentinel errors for known engine failure conditions.
var (
	// ErrValidation indicates a configuration or input validation failure.
	ErrValidation = errors.New("validation error")

	// ErrConnectivity indicates a network connectivity issue.
	ErrConnectivity = errors.New("connectivity error")

	// ErrPermission indicates insufficient permissions.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound indicates a resource, module, or file was not found.
	ErrNotFound = errors.New("not found")

	// ErrCycle indicates a dependency graph cycle (spec.md §6's Dependency
	// Graph cannot express mutual template-controller dependencies).
	ErrCycle = errors.New("dependency cycle")

	// ErrPolicyDenied indicates a policy-gated operation (e.g. Rename) was
	// denied by its governing policy.
	ErrPolicyDenied = errors.New("policy denied")
)

// CompileError captures structured engine-failure information: which
// pipeline stage failed, a stable code, the offending span if one is
// known, and an actionable hint. Rendered multi-line for CLI/debug
// surfaces and JSON-marshaled for LSP/AOT surfaces.
type CompileError struct {
	// Stage is the pipeline stage that failed (e.g. "lower", "resolve").
	Stage string

	// Code is a stable machine-readable error code.
	Code string

	// Message is the specific description (required).
	Message string

	// Span is the offending source span, if known.
	Span *span.SourceSpan

	// Location is a file path / line descriptor for errors with no
	// tracked span (e.g. a config file parse failure).
	Location string

	// Field is the field name for schema/config errors (optional).
	Field string

	// Context contains additional key-value context (optional).
	Context map[string]string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying sentinel error (optional).
	Cause error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder

	b.WriteString("Error")
	if e.Stage != "" {
		b.WriteString(" [")
		b.WriteString(e.Stage)
		b.WriteString("]")
	}
	if e.Code != "" {
		b.WriteString(" ")
		b.WriteString(e.Code)
	}
	b.WriteString("\n")

	if e.Span != nil {
		fmt.Fprintf(&b, "  Span: %s[%d:%d)\n", e.Span.File, e.Span.Start, e.Span.End)
	}
	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}
	if e.Field != "" {
		b.WriteString("  Field: ")
		b.WriteString(e.Field)
		b.WriteString("\n")
	}
	for k, v := range e.Context {
		b.WriteString("  ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the underlying sentinel error.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error with details.
func NewValidationError(message, location, field, hint string) error {
	return &CompileError{
		Code:     "validation-failed",
		Message:  message,
		Location: location,
		Field:    field,
		Hint:     hint,
		Cause:    ErrValidation,
	}
}

// NewNotFoundError creates a not found error with details.
func NewNotFoundError(message, location, hint string) error {
	return &CompileError{
		Code:     "not-found",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// NewCycleError creates a dependency-cycle error naming the stage and
// the span of the node that closed the cycle.
func NewCycleError(stage, message string, at *span.SourceSpan) error {
	return &CompileError{
		Stage:   stage,
		Code:    "dependency-cycle",
		Message: message,
		Span:    at,
		Cause:   ErrCycle,
	}
}

// NewPolicyDeniedError creates a policy-denial error for a gated
// refactor operation.
func NewPolicyDeniedError(message string) error {
	return &CompileError{
		Code:    "policy-denied",
		Message: message,
		Cause:   ErrPolicyDenied,
	}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
