package discovery

import "github.com/opmodel/tscompiler/internal/span"

// ResourceKind is the closed sum of resource definition kinds.
type ResourceKind int

const (
	KindCustomElement ResourceKind = iota
	KindCustomAttribute
	KindTemplateController
	KindValueConverter
	KindBindingBehavior
)

func (k ResourceKind) String() string {
	switch k {
	case KindCustomElement:
		return "customElement"
	case KindCustomAttribute:
		return "customAttribute"
	case KindTemplateController:
		return "templateController"
	case KindValueConverter:
		return "valueConverter"
	case KindBindingBehavior:
		return "bindingBehavior"
	default:
		return "unknown"
	}
}

// OriginKind discriminates where a Sourced value came from.
type OriginKind int

const (
	OriginSource OriginKind = iota
	OriginConfig
	OriginBuiltin
)

// SourceLoc locates a fact's contribution within its source file.
type SourceLoc struct {
	File span.SourceFileId
	Span span.TextSpan
}

// Sourced wraps a converged field value with provenance, so editor tooling
// can answer "why does the compiler think this" (spec.md §3).
type Sourced[T any] struct {
	Origin   OriginKind
	Value    T
	HasValue bool
	Location *SourceLoc
}

// ResourceKey identifies one resource definition within a ResourceGraph.
type ResourceKey struct {
	Kind ResourceKind
	Name string
}

// CanonicalSourceId is spec.md §4.3's dedup key: two atoms with identical
// canonical ids are the same underlying symbol and are merged rather than
// treated as separate evidence.
type CanonicalSourceId struct {
	V              int
	SourceKind     string
	PackageName    string
	SourceFileKey  string
	SymbolKey      string
	ResourceKind   ResourceKind
	ResourceName   string
}

// SourceFileKey derives the sourceFileKey component of a CanonicalSourceId:
// "npm:<pkg>/path" for node_modules, "ws:<pkg>/path" for workspace
// packages, else "abs:<path>".
func SourceFileKey(file span.SourceFileId, pkg string, inNodeModules, inWorkspace bool) string {
	switch {
	case inNodeModules:
		return "npm:" + pkg + "/" + string(file)
	case inWorkspace:
		return "ws:" + pkg + "/" + string(file)
	default:
		return "abs:" + string(file)
	}
}

// ResourceDef is one converged resource definition: bindable/property
// metadata, each field individually sourced.
type ResourceDef struct {
	Kind ResourceKind
	Name Sourced[string]

	ClassName  Sourced[string]
	Containerless Sourced[bool]
	Shadow     Sourced[bool]
	Bindables  map[string]ResourceBindable

	TemplateFile Sourced[span.SourceFileId]

	CanonicalId CanonicalSourceId
}

// ResourceBindable is one bindable member's converged, field-wise-merged
// metadata (spec.md: "bindables merge field-wise rather than object-wise").
type ResourceBindable struct {
	Name Sourced[string]
	Type Sourced[string]
	Mode Sourced[string]
}

// ScopeId identifies one visibility scope in a ResourceGraph.
type ScopeId string

// ResourceScope is one node of the scope tree: its parent (if any) and the
// resources registered directly within it.
type ResourceScope struct {
	Parent  *ScopeId
	Members []ResourceKey
}

// ResourceGraph gives scoped visibility over converged resources: which
// resources are visible from which template, following registration and
// global/local scoping.
type ResourceGraph struct {
	Root       ScopeId
	Scopes     map[ScopeId]*ResourceScope
	Resources  map[ResourceKey]*ResourceDef
}

// Visible returns every resource visible from scope, walking up to Root.
func (g *ResourceGraph) Visible(scope ScopeId) []ResourceKey {
	var out []ResourceKey
	seen := map[ResourceKey]bool{}
	for s := &scope; s != nil; {
		sc, ok := g.Scopes[*s]
		if !ok {
			break
		}
		for _, k := range sc.Members {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
		s = sc.Parent
	}
	return out
}

// Lookup finds a resource by kind+name visible from scope, preferring the
// nearest enclosing scope's definition (local shadows global).
func (g *ResourceGraph) Lookup(scope ScopeId, kind ResourceKind, name string) (*ResourceDef, bool) {
	for _, k := range g.Visible(scope) {
		if k.Kind == kind && k.Name == name {
			if def, ok := g.Resources[k]; ok {
				return def, true
			}
		}
	}
	return nil, false
}
