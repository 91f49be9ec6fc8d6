package workspace

import (
	"context"
	"sort"
	"strings"

	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/span"
)

// RefactorTarget is the closed sum of rename/code-action target classes
// spec.md §4.10's `refactorPolicy.rename.allowedTargets` names.
type RefactorTarget string

const (
	TargetResource  RefactorTarget = "resource"
	TargetBindable  RefactorTarget = "bindable"
	TargetFileRename RefactorTarget = "file-rename"
)

// RefactorDecisionPoint is an unresolved choice that must be pinned
// before a refactor route may run (e.g. "file-rename" — does renaming a
// custom element also rename its backing file — or "import-style").
type RefactorDecisionPoint string

const (
	DecisionFileRename RefactorDecisionPoint = "file-rename"
	DecisionImportStyle RefactorDecisionPoint = "import-style"
)

// RefactorPolicy gates every Rename/CodeActions call. It is part of the
// workspace's options fingerprint (spec.md §4.10): flipping any field
// invalidates every cached Compilation, since a different policy can
// change what a hover/completion/rename answer is allowed to surface.
type RefactorPolicy struct {
	// RenameAllowedTargets restricts which target classes Rename may
	// touch; a class absent here makes Rename deny every request that
	// would route through it.
	RenameAllowedTargets []RefactorTarget

	// RequiredDecisions are decision points that must appear, resolved,
	// in ResolvedDecisions before Rename/CodeActions will run a route
	// that depends on them.
	RequiredDecisions []RefactorDecisionPoint

	// ResolvedDecisions carries the caller's answer for each decision
	// point it has already settled (e.g. {"file-rename": "yes"}).
	ResolvedDecisions map[RefactorDecisionPoint]string

	// AllowTypeScriptFallback is off by default (spec.md §4.10). Rename
	// does not read it and has no TypeScript-symbol fallback route; the
	// field only contributes to the options fingerprint.
	AllowTypeScriptFallback bool
}

func (p RefactorPolicy) allows(t RefactorTarget) bool {
	for _, a := range p.RenameAllowedTargets {
		if a == t {
			return true
		}
	}
	return false
}

func (p RefactorPolicy) decisionResolved(d RefactorDecisionPoint) bool {
	_, ok := p.ResolvedDecisions[d]
	return ok
}

func (p RefactorPolicy) requiredDecisionsUnresolved() []RefactorDecisionPoint {
	var out []RefactorDecisionPoint
	for _, d := range p.RequiredDecisions {
		if !p.decisionResolved(d) {
			out = append(out, d)
		}
	}
	return out
}

// RefactorErrorKind is the closed sum of Rename/CodeActions denial
// reasons.
type RefactorErrorKind string

const (
	ErrRefactorTargetNotAllowed      RefactorErrorKind = "refactor-target-not-allowed"
	ErrRefactorOriginNotAllowed      RefactorErrorKind = "refactor-origin-not-allowed"
	ErrRefactorDecisionRequired      RefactorErrorKind = "refactor-decision-required"
	ErrRefactorProvenanceMissing     RefactorErrorKind = "refactor-provenance-missing"
	ErrRefactorNoRouteProducedEdit   RefactorErrorKind = "refactor-no-route-produced-edit"
)

// RefactorError is the `{error:{kind, message, retryable}}` shape
// spec.md §8's S3 scenario names.
type RefactorError struct {
	Kind      RefactorErrorKind
	Message   string
	Retryable bool
}

func (e *RefactorError) Error() string { return string(e.Kind) + ": " + e.Message }

// TextEdit is one replacement a rename/code-action result applies.
type TextEdit struct {
	Span span.SourceSpan
	Text string
}

// RenameResult is a successful Rename's output: the edits across every
// file the route touched, and which route produced them.
type RenameResult struct {
	Route RefactorTarget
	Edits []TextEdit
}

// renameRouteOrder is the fixed route precedence: the first route that
// yields a non-empty edit set wins. There are two routes, custom element
// then bindable attribute; there is no value-converter or
// binding-behavior route.
var renameRouteOrder = []RefactorTarget{TargetResource, TargetBindable}

// Rename implements spec.md §4.10's policy-gated semantic rename: routes
// try in renameRouteOrder (TargetResource looks up custom elements by
// tag only, so value-converter and binding-behavior names are never
// renamed; TargetBindable is the bindable-attribute route), the first to
// produce a non-empty edit set wins. Returns a *RefactorError on denial
// without mutating any workspace state.
func (w *Workspace) Rename(ctx context.Context, pos Position, newName string) (*RenameResult, *RefactorError) {
	policy := w.opts.RefactorPolicy

	node, _, ok := w.NodeAt(ctx, pos)
	if !ok {
		return nil, &RefactorError{Kind: ErrRefactorProvenanceMissing, Message: "no node at position", Retryable: false}
	}

	if unresolved := policy.requiredDecisionsUnresolved(); len(unresolved) > 0 {
		return nil, &RefactorError{Kind: ErrRefactorDecisionRequired, Message: "unresolved decision: " + string(unresolved[0]), Retryable: false}
	}

	for _, route := range renameRouteOrder {
		if !policy.allows(route) {
			continue
		}
		edits, def, attempted := w.renameRoute(ctx, route, node, pos, newName)
		if !attempted {
			continue
		}
		if def != nil && (def.Name.Origin == discovery.OriginBuiltin || def.Name.Origin == discovery.OriginConfig) {
			return nil, &RefactorError{Kind: ErrRefactorOriginNotAllowed, Message: "resource origin is not source; rename requires source origin", Retryable: false}
		}
		if len(edits) > 0 {
			return &RenameResult{Route: route, Edits: edits}, nil
		}
	}

	if len(policy.RenameAllowedTargets) == 0 {
		return nil, &RefactorError{Kind: ErrRefactorTargetNotAllowed, Message: "no rename target classes allowed by policy", Retryable: false}
	}

	return nil, &RefactorError{Kind: ErrRefactorNoRouteProducedEdit, Message: "no route produced an edit", Retryable: true}
}

// renameRoute tries one route, returning (edits, matched resource def,
// attempted). attempted is false when this route's target class does
// not even apply at pos (e.g. the bindable-attribute route at a
// position that names no attribute), letting Rename fall through to the
// next route instead of treating it as a no-edit failure.
func (w *Workspace) renameRoute(ctx context.Context, route RefactorTarget, node *lower.DomNode, pos Position, newName string) ([]TextEdit, *discovery.ResourceDef, bool) {
	switch route {
	case TargetResource:
		def, ok := w.opts.Graph.Lookup(w.opts.Graph.Root, discovery.KindCustomElement, node.Tag)
		if !ok || !node.TagLoc.Contains(pos.Offset) {
			return nil, nil, false
		}
		refs := w.References(ctx, pos)
		edits := make([]TextEdit, 0, len(refs))
		for _, r := range refs {
			edits = append(edits, TextEdit{Span: r, Text: newName})
		}
		return edits, def, true
	case TargetBindable:
		for _, a := range node.Attrs {
			if !a.NameSpan.Contains(pos.Offset) {
				continue
			}
			bindables, def, has := w.BindablesFor(node)
			if !has {
				return nil, nil, true
			}
			if _, ok := bindables[a.Name]; !ok {
				return nil, def, true
			}
			return []TextEdit{{Span: span.NewSourceSpan(pos.URI, a.NameSpan.Start, a.NameSpan.End), Text: newName}}, def, true
		}
		return nil, nil, false
	default:
		return nil, nil, false
	}
}

// CodeActionKind is the closed sum of code-action categories the
// workspace and TS sources may contribute.
type CodeActionKind string

const (
	ActionQuickFix     CodeActionKind = "quickfix"
	ActionRefactor     CodeActionKind = "refactor"
	ActionSourceImport CodeActionKind = "source.organizeImports"
)

// CodeAction is one actionable edit offered at a position.
type CodeAction struct {
	Id    string
	Kind  CodeActionKind
	Title string
	Edits []TextEdit
}

// CodeActionProvider supplies actions from one source (workspace or a
// TS language service); the TS side is adapted at the call site, since
// this module owns no TS integration.
type CodeActionProvider interface {
	CodeActions(ctx context.Context, pos Position, kinds []CodeActionKind) []CodeAction
}

// CodeActions answers spec.md §4.10's collected/filtered/deduped code
// action query: workspace-native actions first, then provider-supplied
// ones, filtered by kinds, deduped by id, with decision-gated actions
// suppressed unless the style profile resolves them.
func (w *Workspace) CodeActions(ctx context.Context, pos Position, kinds []CodeActionKind, tsProvider CodeActionProvider) []CodeAction {
	var all []CodeAction
	all = append(all, w.workspaceCodeActions(ctx, pos)...)
	if tsProvider != nil {
		all = append(all, tsProvider.CodeActions(ctx, pos, kinds)...)
	}

	kindOk := func(k CodeActionKind) bool {
		if len(kinds) == 0 {
			return true
		}
		for _, want := range kinds {
			if want == k {
				return true
			}
		}
		return false
	}

	policy := w.opts.RefactorPolicy
	importStyleResolved := policy.decisionResolved(DecisionImportStyle) || w.opts.StyleProfileHint != ""

	seen := map[string]bool{}
	out := make([]CodeAction, 0, len(all))
	for _, a := range all {
		if !kindOk(a.Kind) || seen[a.Id] {
			continue
		}
		if a.Kind == ActionSourceImport && !importStyleResolved {
			continue
		}
		seen[a.Id] = true
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// workspaceCodeActions offers the one native action this compiler can
// propose with full confidence: renaming a bindable attribute to match
// its declared camelCase name when authored markup drifted to a
// mismatched case variant.
func (w *Workspace) workspaceCodeActions(ctx context.Context, pos Position) []CodeAction {
	node, _, ok := w.NodeAt(ctx, pos)
	if !ok {
		return nil
	}
	bindables, _, has := w.BindablesFor(node)
	if !has {
		return nil
	}
	var out []CodeAction
	for _, a := range node.Attrs {
		if !a.NameSpan.Contains(pos.Offset) {
			continue
		}
		for name := range bindables {
			if name == a.Name || !strings.EqualFold(name, a.Name) {
				continue
			}
			out = append(out, CodeAction{
				Id:    "align-bindable-case:" + string(pos.URI) + ":" + name,
				Kind:  ActionQuickFix,
				Title: "Use declared bindable name " + name,
				Edits: []TextEdit{{Span: span.NewSourceSpan(pos.URI, a.NameSpan.Start, a.NameSpan.End), Text: name}},
			})
		}
	}
	return out
}
