// Package diag implements the diagnostics engine: a catalog of diagnostic
// codes, a raw-to-routed emission pipeline (normalize, demote, policy,
// route), and per-surface formatters. This file defines the shapes shared
// by every stage that reports diagnostics (C4 lowering, C5 resolution, C7
// type check, ...); the pipeline itself lives in pipeline.go.
package diag

import "github.com/opmodel/tscompiler/internal/span"

// Severity mirrors the teacher's error/warn/info triage vocabulary, widened
// with Hint to match editor tooling's four-level convention.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// RawDiagnostic is what a compiler stage emits: a code plus enough context
// to render a message and locate it, before confidence/policy processing.
type RawDiagnostic struct {
	Code     string
	Message  string
	Severity Severity // zero value defers to the DiagnosticSpec's default
	Span     *span.SourceSpan
	Data     map[string]any
	Related  []RawDiagnostic
}

// Well-known codes emitted by Template Lowering (C4).
const (
	CodeInvalidCommandUsage = "invalid-command-usage"
	CodeExprParseError      = "expr-parse-error"
)
