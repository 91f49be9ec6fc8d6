// Package discovery implements Project-Semantics Discovery (C3): it turns
// per-file class facts into a converged resource catalog (ResourceGraph)
// that Host Resolution (C5), Scope Binding (C6), and Type Check (C7)
// consult to know what a template's elements and attributes actually are.
//
// Extracting class facts from source requires parsing the host language
// (TypeScript-like decorators, static members, call expressions) — spec.md
// §1/§6 name the host-language AST parser an opaque external collaborator,
// so this package does not parse source text. It starts one step in: a
// ClassFact is the data contract an upstream (opaque) extractor hands us,
// mirroring how internal/htmldoc is the data contract for the HTML parser.
package discovery

import "github.com/opmodel/tscompiler/internal/span"

// EvidenceSourceKind ranks where a fact came from; lower-ranked sources win
// ties under the "highest-rank" convergence operator.
type EvidenceSourceKind int

const (
	SourceDecorator EvidenceSourceKind = iota
	SourceStaticAu
	SourceDefineCall
	SourceConvention
)

func (k EvidenceSourceKind) String() string {
	switch k {
	case SourceDecorator:
		return "decorator"
	case SourceStaticAu:
		return "static-au"
	case SourceDefineCall:
		return "define-call"
	case SourceConvention:
		return "convention"
	default:
		return "unknown"
	}
}

// DecoratorFact is one decorator application observed on a class or member.
type DecoratorFact struct {
	Name string
	Args []any
}

// BindableFact is one bindable member (decorated, statically declared, or
// defined via a define-call's bindables list).
type BindableFact struct {
	Name string
	Type string // host type text, "" if unresolved (AnalysisGap)
	Mode string // one of the BindingMode labels, "" if unspecified
}

// DefineCallFact captures a `CustomElement.define({...}, Class)`-shaped
// static registration call.
type DefineCallFact struct {
	ResourceKind string
	Name         string
	Bindables    []BindableFact
}

// AnalysisGap records an annotation or argument that could not be
// partially evaluated to a static value (spec.md §4.3 stage 3).
type AnalysisGap struct {
	Field  string
	Reason string
}

// ClassFact is everything Discovery needs about one class declaration,
// already extracted by the opaque host-AST collaborator.
type ClassFact struct {
	DeclaredName string
	ExportName   string // "" if not exported
	IsDefault    bool
	File         span.SourceFileId
	Span         span.TextSpan

	Decorators     []DecoratorFact
	MemberDecos    map[string][]DecoratorFact // member name -> decorators
	StaticAu       map[string]any             // static $au object, partially evaluated
	DefineCalls    []DefineCallFact
	Bindables      []BindableFact
	Gaps           []AnalysisGap

	// RegisterCalls lists resource identifiers passed to this class's
	// static `dependencies`/`register` surface.
	RegisterCalls []string
	// SiblingTemplateFile is the conventionally-paired template file
	// (same basename, .html extension) if one exists, for the convention
	// pattern and the template association stage.
	SiblingTemplateFile span.SourceFileId
}
