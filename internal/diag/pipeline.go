package diag

import (
	"strings"

	"github.com/opmodel/tscompiler/internal/span"
)

// Normalized is a RawDiagnostic resolved against the catalog: severity
// and impact/actionability defaults filled in, span presence checked.
type Normalized struct {
	Spec       DiagnosticSpec
	Message    string
	Severity   Severity
	Span       *span.SourceSpan
	Confidence Confidence
	Data       map[string]any
	Related    []RawDiagnostic
}

// Resolved is a Normalized diagnostic after demotion and policy have run;
// Severity may differ from Normalized.Severity, or Suppressed may be set.
type Resolved struct {
	Normalized
	Suppressed bool
}

// Routed is a Resolved diagnostic assigned to the surfaces it will
// actually be formatted for.
type Routed struct {
	Resolved
	Surfaces []Surface
}

// Policy is the engine-wide diagnostics policy: the override chain
// spec.md §4.9 names — defaults (the catalog's own DefaultSeverity,
// already applied by Normalize) → category → code → surface → mode,
// each level free to override the previous — plus the blocking-
// suppression guard. A severity of "off" suppresses the diagnostic
// unless the spec's impact is blocking and AllowSuppressBlocking is
// false.
type Policy struct {
	CategoryOverrides map[string]Severity
	CodeOverrides     map[string]Severity
	SurfaceOverrides  map[Surface]Severity
	ModeOverrides     map[string]Severity
	Mode              string
	AllowSuppressBlocking bool
}

// Pipeline runs normalize → demote → policy → route against a catalog
// and policy, for one requested surface set.
type Pipeline struct {
	Catalog *Catalog
	Policy  Policy
}

// NewPipeline returns a Pipeline wired to catalog and policy.
func NewPipeline(catalog *Catalog, policy Policy) *Pipeline {
	return &Pipeline{Catalog: catalog, Policy: policy}
}

// Normalize resolves raw against the catalog. It returns ok=false (and
// drops the diagnostic) when the code is unknown or its status is
// deprecated/legacy, or when the spec requires a span and raw has none.
func (p *Pipeline) Normalize(raw RawDiagnostic) (Normalized, bool) {
	spec, ok := p.Catalog.Lookup(raw.Code)
	if !ok {
		return Normalized{}, false
	}
	if spec.Status == StatusDeprecated || spec.Status == StatusLegacy {
		return Normalized{}, false
	}
	if spec.SpanRequirement == "span" && raw.Span == nil {
		return Normalized{}, false
	}

	severity := raw.Severity
	if severity == "" {
		severity = spec.DefaultSeverity
	}
	confidence := spec.DefaultConfidence
	if c, ok := raw.Data["confidence"].(string); ok && c != "" {
		confidence = Confidence(c)
	}

	return Normalized{
		Spec: spec, Message: raw.Message, Severity: severity, Span: raw.Span,
		Confidence: confidence, Data: raw.Data, Related: raw.Related,
	}, true
}

// Demote applies confidence × evidence-regime demotion (spec.md §4.9's
// Demote bullet). Demotion only ever lowers severity, never raises it
// (the "demotion monotonicity" rule), and a target of "suppressed" is
// reported via the second return value.
func Demote(n Normalized) (Severity, bool) {
	switch n.Spec.EvidenceRegime {
	case EvidenceGrammarDeterministic:
		return n.Severity, false
	case EvidenceBehavioralDependent:
		return capAt(n.Severity, SeverityInfo), false
	case EvidenceCatalogDependent:
		return demoteCatalogDependent(n.Severity, n.Confidence)
	default:
		return n.Severity, false
	}
}

func demoteCatalogDependent(sev Severity, conf Confidence) (Severity, bool) {
	switch conf {
	case ConfidenceExact, ConfidenceHigh:
		return sev, false
	case ConfidencePartial, ConfidenceMedium:
		switch sev {
		case SeverityError:
			return SeverityWarning, false
		case SeverityWarning:
			return SeverityInfo, false
		default:
			return sev, false
		}
	case ConfidenceLow:
		switch sev {
		case SeverityError:
			return SeverityInfo, false
		case SeverityWarning:
			return sev, true // suppressed
		default:
			return sev, false
		}
	default:
		return sev, false
	}
}

var severityRank = map[Severity]int{
	SeverityError: 3, SeverityWarning: 2, SeverityInfo: 1, SeverityHint: 0,
}

func capAt(sev, ceiling Severity) Severity {
	if severityRank[sev] > severityRank[ceiling] {
		return ceiling
	}
	return sev
}

// Apply runs demote → policy against a Normalized diagnostic.
func (p *Pipeline) Apply(n Normalized) Resolved {
	sev, suppressedByDemotion := Demote(n)
	n.Severity = sev

	sev, suppressed := p.applyPolicy(n)
	n.Severity = sev
	return Resolved{Normalized: n, Suppressed: suppressed || suppressedByDemotion}
}

func (p *Pipeline) applyPolicy(n Normalized) (Severity, bool) {
	sev := n.Severity
	if v, ok := p.Policy.CategoryOverrides[n.Spec.Category]; ok {
		sev = v
	}
	if v, ok := p.Policy.CodeOverrides[n.Spec.Code]; ok {
		sev = v
	} else if v, ok := p.Policy.CodeOverrides[strings.TrimPrefix(n.Spec.Code, "aurelia/")]; ok {
		// bare "<name>" keys match too, as Catalog.Lookup accepts both forms
		sev = v
	}
	for _, s := range n.Spec.Surfaces {
		if v, ok := p.Policy.SurfaceOverrides[s]; ok {
			sev = v
		}
	}
	if p.Policy.Mode != "" {
		if v, ok := p.Policy.ModeOverrides[p.Policy.Mode]; ok {
			sev = v
		}
	}
	if sev == "off" {
		if n.Spec.Impact == ImpactBlocking && !p.Policy.AllowSuppressBlocking {
			return n.Severity, false
		}
		return n.Severity, true
	}
	return sev, false
}

func containsSurface(surfaces []Surface, s Surface) bool {
	for _, x := range surfaces {
		if x == s {
			return true
		}
	}
	return false
}

// Route assigns r to the intersection of its spec's surfaces and the
// caller's requested surfaces (spec.md §4.9's Route bullet). A
// diagnostic routed to zero surfaces is still returned, with an empty
// Surfaces slice, so callers can distinguish "suppressed" from
// "routed nowhere".
func Route(r Resolved, requested []Surface) Routed {
	var out []Surface
	for _, s := range r.Spec.Surfaces {
		if containsSurface(requested, s) {
			out = append(out, s)
		}
	}
	return Routed{Resolved: r, Surfaces: out}
}

// Run executes the full normalize → demote → policy → route pipeline
// over a batch of raw diagnostics for the given requested surfaces.
// Diagnostics that fail Normalize or end up Suppressed are dropped.
func (p *Pipeline) Run(raws []RawDiagnostic, requested []Surface) []Routed {
	var out []Routed
	for _, raw := range raws {
		n, ok := p.Normalize(raw)
		if !ok {
			continue
		}
		resolved := p.Apply(n)
		if resolved.Suppressed {
			continue
		}
		routed := Route(resolved, requested)
		if len(routed.Surfaces) == 0 {
			continue
		}
		out = append(out, routed)
	}
	return out
}
