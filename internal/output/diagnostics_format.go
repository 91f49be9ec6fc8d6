package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/opmodel/tscompiler/internal/diag"
)

// severityRank orders diagnostics for deterministic CLI output: error
// before warning before info before hint, matching the catalog's own
// four-level Severity vocabulary.
func severityRank(s diag.Severity) int {
	switch s {
	case diag.SeverityError:
		return 0
	case diag.SeverityWarning:
		return 1
	case diag.SeverityInfo:
		return 2
	case diag.SeverityHint:
		return 3
	default:
		return 4
	}
}

// DiagnosticsOptions controls routed-diagnostics output formatting.
type DiagnosticsOptions struct {
	// Format specifies output format: "yaml" or "json"
	Format OutputFormat
	// Writer is the output destination
	Writer io.Writer
}

// diagnosticRecord is the serializable shape one Routed diagnostic
// renders to; `yaml`/`json` tags keep field casing consistent across
// both encoders.
type diagnosticRecord struct {
	Code       string         `yaml:"code" json:"code"`
	Severity   string         `yaml:"severity" json:"severity"`
	Message    string         `yaml:"message" json:"message"`
	Surfaces   []diag.Surface `yaml:"surfaces" json:"surfaces"`
	Suppressed bool           `yaml:"suppressed,omitempty" json:"suppressed,omitempty"`
}

// WriteDiagnostics writes routed diagnostics to the writer in the
// specified format, sorted by severity then code then message for
// deterministic output.
func WriteDiagnostics(routed []diag.Routed, opts DiagnosticsOptions) error {
	if len(routed) == 0 {
		return nil
	}

	records := toDiagnosticRecords(routed)
	sortDiagnosticRecords(records)

	switch opts.Format {
	case FormatJSON:
		return writeDiagnosticsJSON(records, opts.Writer)
	case FormatYAML:
		return writeDiagnosticsYAML(records, opts.Writer)
	case FormatTable, FormatDir:
		return fmt.Errorf("format %s not supported for diagnostics output", opts.Format)
	}
	return writeDiagnosticsYAML(records, opts.Writer)
}

func toDiagnosticRecords(routed []diag.Routed) []diagnosticRecord {
	out := make([]diagnosticRecord, len(routed))
	for i, r := range routed {
		out[i] = diagnosticRecord{
			Code:       r.Spec.Code,
			Severity:   string(r.Severity),
			Message:    r.Message,
			Surfaces:   r.Surfaces,
			Suppressed: r.Suppressed,
		}
	}
	return out
}

func sortDiagnosticRecords(records []diagnosticRecord) {
	sort.Slice(records, func(i, j int) bool {
		si, sj := severityRank(diag.Severity(records[i].Severity)), severityRank(diag.Severity(records[j].Severity))
		if si != sj {
			return si < sj
		}
		if records[i].Code != records[j].Code {
			return records[i].Code < records[j].Code
		}
		return records[i].Message < records[j].Message
	})
}

func writeDiagnosticsYAML(records []diagnosticRecord, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	for _, r := range records {
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("encoding diagnostic %s: %w", r.Code, err)
		}
	}
	return encoder.Close()
}

func writeDiagnosticsJSON(records []diagnosticRecord, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("encoding diagnostics JSON: %w", err)
	}
	return nil
}
