package diag

import "fmt"

// Formatter renders one Routed diagnostic for a specific surface.
type Formatter interface {
	Format(r Routed) string
}

// CLIFormatter renders a single-line, grep-friendly form: the teacher's
// own CLI output convention (internal/output) for user-facing errors.
type CLIFormatter struct{}

func (CLIFormatter) Format(r Routed) string {
	loc := ""
	if r.Span != nil {
		loc = fmt.Sprintf("%s:%d: ", r.Span.File, r.Span.Start)
	}
	return fmt.Sprintf("%s%s [%s] %s", loc, r.Severity, r.Spec.Code, r.Message)
}

// LSPFormatter renders the field set an editor client expects per
// diagnostic: code, message, severity, and the zero-based range an LSP
// consumer can place a squiggle under.
type LSPFormatter struct{}

// LSPDiagnostic is the wire shape an editor client consumes.
type LSPDiagnostic struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Source   string `json:"source"`
	Start    int    `json:"start,omitempty"`
	End      int    `json:"end,omitempty"`
}

func (LSPFormatter) Format(r Routed) string {
	d := r.ToLSP()
	return fmt.Sprintf("%s(%d,%d): %s %s: %s", d.Source, d.Start, d.End, d.Severity, d.Code, d.Message)
}

// ToLSP converts r into the structured LSP shape; callers that need JSON
// serialize this directly rather than Format's pre-rendered string.
func (r Routed) ToLSP() LSPDiagnostic {
	d := LSPDiagnostic{Code: r.Spec.Code, Message: r.Message, Severity: string(r.Severity), Source: "aurelia"}
	if r.Span != nil {
		d.Start, d.End = r.Span.Start, r.Span.End
	}
	return d
}

// AOTFormatter renders the terse form used by the build/AOT surface,
// which fails the build on any blocking diagnostic and otherwise just
// logs a one-line summary (no source snippet, no color).
type AOTFormatter struct{}

func (AOTFormatter) Format(r Routed) string {
	return fmt.Sprintf("[%s] %s: %s", r.Severity, r.Spec.Code, r.Message)
}

// FormatterFor resolves the formatter for one surface.
func FormatterFor(s Surface) Formatter {
	switch s {
	case SurfaceLSP:
		return LSPFormatter{}
	case SurfaceAOT:
		return AOTFormatter{}
	default:
		return CLIFormatter{}
	}
}
