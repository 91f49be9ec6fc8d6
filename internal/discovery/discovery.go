package discovery

import (
	"fmt"
	"sort"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/span"
)

// RegistrationGraph records which class registered which resource
// identifiers, taken from each ClassFact's RegisterCalls (its static
// `dependencies`/`register(...)` calls); `<import>` tags in a paired
// template are not recorded (spec.md §4.3 stage 6).
type RegistrationGraph struct {
	Edges map[string][]string // registering class's declared name -> registered resource names
}

// Snapshot is a frozen semantic + API-surface view of one discovery run,
// cached and reused across templates within a session (spec.md §4.3 stage
// 8, and the control-flow note "Host Resolution reads the Project
// Discovery snapshot, reused across templates").
type Snapshot struct {
	Graph        *ResourceGraph
	Registration *RegistrationGraph
	Diagnostics  []diag.RawDiagnostic
}

// rootScope is the single global scope every discovered resource is
// registered into. RegistrationGraph still records per-class dependency
// edges for introspection, but this reference implementation does not yet
// derive per-template local scopes from them — every resource is globally
// visible, which is the common case for a project without siloed feature
// modules. A richer scope derivation is future work.
const rootScope ScopeId = "global"

// Discover runs the full C3 pipeline over a project's extracted class
// facts: pattern match, definition convergence, registration analysis, and
// ResourceGraph construction.
func Discover(facts []ClassFact) *Snapshot {
	type candidate struct {
		key    ResourceKey
		source EvidenceSourceKind
		fact   ClassFact
	}

	var candidates []candidate
	for _, cf := range facts {
		kind, name, source, ok := patternMatch(cf)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{key: ResourceKey{Kind: kind, Name: name}, source: source, fact: cf})
	}

	byKey := map[ResourceKey][]candidate{}
	var keyOrder []ResourceKey
	for _, c := range candidates {
		if _, seen := byKey[c.key]; !seen {
			keyOrder = append(keyOrder, c.key)
		}
		byKey[c.key] = append(byKey[c.key], c)
	}
	sort.Slice(keyOrder, func(i, j int) bool {
		if keyOrder[i].Kind != keyOrder[j].Kind {
			return keyOrder[i].Kind < keyOrder[j].Kind
		}
		return keyOrder[i].Name < keyOrder[j].Name
	})

	resources := map[ResourceKey]*ResourceDef{}
	var members []ResourceKey
	var allDiags []diag.RawDiagnostic
	registration := &RegistrationGraph{Edges: map[string][]string{}}

	for _, key := range keyOrder {
		group := byKey[key]
		var atoms []Atom
		bindableNames := map[string]bool{}
		for _, c := range group {
			cf := c.fact
			loc := &SourceLoc{File: cf.File, Span: cf.Span}
			atoms = append(atoms,
				Atom{AtomId: cf.File.String() + "#" + cf.DeclaredName + "#className", Field: "resource.className", Value: cf.DeclaredName, SourceKind: c.source, EvidenceRank: int(c.source), Location: loc},
				Atom{AtomId: cf.File.String() + "#" + cf.DeclaredName + "#name", Field: "resource.name", Value: key.Name, SourceKind: c.source, EvidenceRank: int(c.source), Location: loc},
			)
			for _, b := range cf.Bindables {
				bindableNames[b.Name] = true
				atoms = append(atoms,
					Atom{AtomId: fmt.Sprintf("%s#%s#%s#type", cf.File, cf.DeclaredName, b.Name), Field: "bindables." + b.Name + ".type", Value: b.Type, SourceKind: c.source, EvidenceRank: int(c.source), Location: loc},
					Atom{AtomId: fmt.Sprintf("%s#%s#%s#mode", cf.File, cf.DeclaredName, b.Name), Field: "bindables." + b.Name + ".mode", Value: b.Mode, SourceKind: c.source, EvidenceRank: int(c.source), Location: loc},
				)
			}
			if cf.TemplateFileOf() != "" {
				atoms = append(atoms, Atom{AtomId: cf.File.String() + "#tpl", Field: "resource.templateFile", Value: cf.TemplateFileOf(), SourceKind: c.source, EvidenceRank: int(c.source), Location: loc})
			}
			registration.Edges[cf.DeclaredName] = append(registration.Edges[cf.DeclaredName], cf.RegisterCalls...)
		}

		merged, diags := Converge(atoms, DefaultRulebook)
		allDiags = append(allDiags, diags...)

		def := &ResourceDef{
			Kind:      key.Kind,
			Name:      sourcedString(merged, "resource.name"),
			ClassName: sourcedString(merged, "resource.className"),
			Bindables: map[string]ResourceBindable{},
		}
		if v, ok := merged["resource.templateFile"]; ok {
			if f, ok := v.(span.SourceFileId); ok {
				def.TemplateFile = Sourced[span.SourceFileId]{Origin: OriginSource, Value: f, HasValue: true}
			}
		}
		var bindableOrder []string
		for name := range bindableNames {
			bindableOrder = append(bindableOrder, name)
		}
		sort.Strings(bindableOrder)
		for _, name := range bindableOrder {
			def.Bindables[name] = ResourceBindable{
				Name: Sourced[string]{Origin: OriginSource, Value: name, HasValue: true},
				Type: sourcedString(merged, "bindables."+name+".type"),
				Mode: sourcedString(merged, "bindables."+name+".mode"),
			}
		}
		def.CanonicalId = CanonicalSourceId{
			V: 1, SourceKind: group[0].source.String(),
			SourceFileKey: SourceFileKey(group[0].fact.File, "", false, false),
			SymbolKey:     group[0].fact.DeclaredName,
			ResourceKind:  key.Kind, ResourceName: key.Name,
		}

		resources[key] = def
		members = append(members, key)
	}

	graph := &ResourceGraph{
		Root:      rootScope,
		Scopes:    map[ScopeId]*ResourceScope{rootScope: {Members: members}},
		Resources: resources,
	}

	return &Snapshot{Graph: graph, Registration: registration, Diagnostics: allDiags}
}

func sourcedString(merged map[string]any, field string) Sourced[string] {
	v, ok := merged[field]
	if !ok {
		return Sourced[string]{}
	}
	s, _ := v.(string)
	return Sourced[string]{Origin: OriginSource, Value: s, HasValue: true}
}

// TemplateFileOf returns the class's associated template file if it has
// one (spec.md §4.3 stage 9, "associate each element with its external or
// inline template").
func (cf ClassFact) TemplateFileOf() span.SourceFileId {
	return cf.SiblingTemplateFile
}
